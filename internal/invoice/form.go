package invoice

import (
	"errors"
	"math"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	msgCustomerRequired = "Customer ID is required"
	msgAmountNumber     = "Amount must be a number"
	msgAmountPositive   = "Amount must be greater than 0"
	msgAmountTooLarge   = "Amount is too large"
	msgStatusInvalid    = "Status must be pending or paid"
)

// maxCents is the largest amount the invoices.amount integer column holds.
const maxCents = math.MaxInt32

var hundred = decimal.NewFromInt(100)

// Form is the raw invoice input as submitted by the dashboard forms.
// The id and date are assigned by the server and never read from the form.
type Form struct {
	CustomerID string
	Amount     string
	Status     string
}

// FormFromValues extracts the invoice fields from submitted form values.
func FormFromValues(values url.Values) Form {
	return Form{
		CustomerID: values.Get("customerId"),
		Amount:     values.Get("amount"),
		Status:     values.Get("status"),
	}
}

// Fields is the normalized form input, ready to be persisted.
type Fields struct {
	CustomerID string
	Amount     decimal.Decimal
	Status     Status
}

// Cents converts the amount to minor currency units.
func (f Fields) Cents() int64 {
	return cents(f.Amount).IntPart()
}

func cents(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(hundred).Round(0)
}

// FieldErrors maps a form field name to the messages of every rule it broke.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

type input struct {
	CustomerID string          `form:"customerId" validate:"required"`
	Amount     decimal.Decimal `form:"amount" validate:"gt=0"`
	Status     string          `form:"status" validate:"required,oneof=pending paid"`
}

// messages is keyed by "<field>.<tag>".
var messages = map[string]string{
	"customerId.required": msgCustomerRequired,
	"amount.gt":           msgAmountPositive,
	"status.required":     msgStatusInvalid,
	"status.oneof":        msgStatusInvalid,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		d, ok := field.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}

		return d.InexactFloat64()
	}, decimal.Decimal{})

	return v
}

// Validate coerces and checks a submitted invoice form. Every field is
// checked; the returned FieldErrors is nil only when the form is valid.
func Validate(form Form) (Fields, FieldErrors) {
	in := input{
		CustomerID: strings.TrimSpace(form.CustomerID),
		Status:     form.Status,
	}

	// A blank amount coerces to zero, like an empty numeric input.
	amountOK := true

	if raw := strings.TrimSpace(form.Amount); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			amountOK = false
		}

		in.Amount = d
	}

	errs := FieldErrors{}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)

		for _, fe := range verrs {
			msg, ok := messages[fe.Field()+"."+fe.Tag()]
			if !ok {
				msg = "Invalid " + fe.Field()
			}

			errs.add(fe.Field(), msg)
		}
	}

	switch {
	case !amountOK:
		errs["amount"] = []string{msgAmountNumber}
	case errs["amount"] == nil:
		// The float check above passes amounts that vanish or overflow
		// once converted to cents.
		c := cents(in.Amount)
		if !c.IsPositive() {
			errs.add("amount", msgAmountPositive)
		} else if c.GreaterThan(decimal.NewFromInt(maxCents)) {
			errs.add("amount", msgAmountTooLarge)
		}
	}

	if len(errs) > 0 {
		return Fields{}, errs
	}

	return Fields{
		CustomerID: in.CustomerID,
		Amount:     in.Amount,
		Status:     Status(in.Status),
	}, nil
}
