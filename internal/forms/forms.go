// ABOUTME: Input forms for registration, drivers, and bookings with struct-tag validation
// ABOUTME: Failures come back as session validation errors so callers handle them uniformly

package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/session"
)

var (
	once     sync.Once
	validate *validator.Validate

	// now is the clock future pickup times are checked against
	now = time.Now
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if label := f.Tag.Get("label"); label != "" {
				return label
			}
			return strings.ToLower(f.Name)
		})
		validate.RegisterValidation("pickuptime", func(fl validator.FieldLevel) bool {
			_, ok := client.Booking{PickupTime: fl.Field().String()}.PickupAt()
			return ok
		})
		validate.RegisterValidation("future", func(fl validator.FieldLevel) bool {
			at, ok := client.Booking{PickupTime: fl.Field().String()}.PickupAt()
			return ok && at.After(now())
		})
	})
	return validate
}

// Registration is the sign-up form, including the confirmation field
type Registration struct {
	Username string `label:"username" validate:"required"`
	Email    string `label:"email" validate:"required,email"`
	Password string `label:"password" validate:"required,min=6"`
	Confirm  string `label:"confirmation" validate:"eqfield=Password"`
	Role     string `label:"role" validate:"oneof=ADMIN HR DRIVER"`
}

// Validate checks the form without contacting the server
func (r Registration) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
	return check("register", r)
}

// Session converts the form into the manager's registration input
func (r Registration) Session() session.Registration {
	return session.Registration{
		Username: strings.TrimSpace(r.Username),
		Email:    strings.TrimSpace(r.Email),
		Password: r.Password,
		Role:     session.ParseRole(r.Role),
	}
}

// Driver is the admin's add-driver form
type Driver struct {
	Name    string `label:"name" validate:"required"`
	Email   string `label:"email" validate:"required,email"`
	CabType string `label:"cab type" validate:"required"`
}

func (d Driver) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.CabType = strings.TrimSpace(d.CabType)
	return check("add driver", d)
}

// Client converts the form into the API payload
func (d Driver) Client() client.Driver {
	return client.Driver{
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.TrimSpace(d.Email),
		CabType: strings.TrimSpace(d.CabType),
	}
}

// DefaultDurationMin pre-fills the booking form
const DefaultDurationMin = 30

// Booking is the HR create-booking form
type Booking struct {
	EmployeeName string `label:"employee name" validate:"required"`
	Pickup       string `label:"pickup" validate:"required"`
	DropLocation string `label:"drop location" validate:"required"`
	PickupTime   string `label:"pickup time" validate:"required,pickuptime,future"`
	CabType      string `label:"cab type" validate:"required"`
	DurationMin  int    `label:"duration" validate:"min=1"`
}

func (b Booking) Validate() error {
	b.EmployeeName = strings.TrimSpace(b.EmployeeName)
	b.Pickup = strings.TrimSpace(b.Pickup)
	b.DropLocation = strings.TrimSpace(b.DropLocation)
	b.PickupTime = strings.TrimSpace(b.PickupTime)
	b.CabType = strings.TrimSpace(b.CabType)
	return check("book", b)
}

// Client converts the form into the API payload for the HR user hrEmail
func (b Booking) Client(hrEmail string) client.Booking {
	return client.Booking{
		EmployeeName: strings.TrimSpace(b.EmployeeName),
		Pickup:       strings.TrimSpace(b.Pickup),
		DropLocation: strings.TrimSpace(b.DropLocation),
		PickupTime:   strings.TrimSpace(b.PickupTime),
		CabType:      strings.TrimSpace(b.CabType),
		DurationMin:  b.DurationMin,
		HREmail:      hrEmail,
	}
}

func check(op string, form any) error {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return &session.Error{
		Kind:    session.KindValidation,
		Op:      op,
		Message: strings.Join(msgs, "; "),
	}
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "eqfield":
		return "passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "pickuptime":
		return field + " must look like 2025-03-01T09:30"
	case "future":
		return field + " must be in the future"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
