package invoice

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"

	"gstinvoice/pkg/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their persisted JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// The registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("taxrate", func(fl validator.FieldLevel) bool {
		return models.ValidTaxRate(fl.Field().Float())
	})
	_ = v.RegisterValidation("phone", validPhone)

	return v
}

// PhoneRegion is the region assumed for numbers written without a country
// code.
const PhoneRegion = "IN"

func validPhone(fl validator.FieldLevel) bool {
	num, err := libphonenumber.Parse(fl.Field().String(), PhoneRegion)
	if err != nil {
		return false
	}
	return libphonenumber.IsPossibleNumber(num)
}

// draftInput is the shape of a draft checked before assembly.
type draftInput struct {
	Type    models.InvoiceType   `json:"type" validate:"oneof=GST NON_GST BILL"`
	Date    string               `json:"date" validate:"required,datetime=2006-01-02"`
	DueDate string               `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Status  models.InvoiceStatus `json:"status" validate:"omitempty,oneof=Draft Paid Unpaid"`
	Items   []models.InvoiceItem `json:"items" validate:"min=1,dive"`
}

// validateDraft checks d with its items already normalized for the type.
func validateDraft(d *Draft, items []models.InvoiceItem) error {
	in := draftInput{
		Type:    d.Type,
		Date:    d.Date,
		DueDate: d.DueDate,
		Status:  d.Status,
		Items:   items,
	}

	var errs ValidationErrors
	if d.Buyer == nil {
		errs = append(errs, NewValidationError("buyer", nil, "must be selected"))
	}
	if err := validate.Struct(in); err != nil {
		fieldErrs, convErr := fieldErrors(err)
		if convErr != nil {
			return convErr
		}
		errs = append(errs, fieldErrs...)
	}
	if len(errs) == 0 && d.DueDate < d.Date {
		errs = append(errs, NewValidationError("dueDate", d.DueDate, "must not be before the invoice date"))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateRecord checks a client, product or profile against its tags.
func validateRecord(v any) error {
	if err := validate.Struct(v); err != nil {
		fieldErrs, convErr := fieldErrors(err)
		if convErr != nil {
			return convErr
		}
		return fieldErrs
	}
	return nil
}

func fieldErrors(err error) (ValidationErrors, error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, NewValidationError(fieldPath(fe), fe.Value(), message(fe)))
	}
	return out, nil
}

// fieldPath drops the struct type name from the namespace, giving
// "items[0].name" rather than "draftInput.items[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "needs at least one item"
		}
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "email":
		return "must be a valid email address"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "alphanum":
		return "must contain only letters and digits"
	case "phone":
		return "must be a phone number"
	case "taxrate":
		return "must be one of 0, 5, 12, 18, 28"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	}
	return "failed the " + fe.Tag() + " check"
}
