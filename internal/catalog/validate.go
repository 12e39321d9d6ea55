package catalog

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation messages are fixed strings so the live per-field feedback and
// the submit-time whole-form pass can never drift apart.
const (
	MsgInvalidName        = "Name must be 3-50 characters"
	MsgInvalidPrice       = "Price must be a positive number with up to 2 decimal places"
	MsgInvalidStock       = "Stock must be a non-negative integer"
	MsgInvalidDescription = "Description must be under 200 characters"
	MsgInvalidImage       = "Invalid image URL"
)

// ProductForm carries field input exactly as typed; parsing into a Product
// happens only after validation passes.
type ProductForm struct {
	Name        string `json:"name"        validate:"min=3,max=50"`
	Price       string `json:"price"       validate:"priceformat"`
	Category    string `json:"category"`
	Stock       string `json:"stock"       validate:"stockint"`
	Description string `json:"description" validate:"max=200"`
	Image       string `json:"image"       validate:"omitempty,imageurl"`
}

var (
	priceRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	// An image URL is accepted when it ends in a known image extension
	// (query string allowed), or when it is any http(s) URL that at least
	// mentions one.
	imageExtRe     = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp|bmp|svg)(\?.*)?$`)
	httpURLRe      = regexp.MustCompile(`(?i)^https?://.+$`)
	imageKeywordRe = regexp.MustCompile(`(?i)(jpg|jpeg|png|gif|webp|bmp|svg)`)
)

var fieldMessages = map[string]string{
	"name":        MsgInvalidName,
	"price":       MsgInvalidPrice,
	"stock":       MsgInvalidStock,
	"description": MsgInvalidDescription,
	"image":       MsgInvalidImage,
}

// formFieldNames maps the public (json) field names to struct field names
// for partial validation.
var formFieldNames = map[string]string{
	"name":        "Name",
	"price":       "Price",
	"stock":       "Stock",
	"description": "Description",
	"image":       "Image",
}

// FormValidator evaluates the product form rules either per field (live
// feedback) or across the whole form (submit gating). Both paths run the
// same tag pipeline, so for a given field value they always produce the same
// message or the same absence of one.
type FormValidator struct {
	validate *validator.Validate
}

// NewFormValidator builds the validator with the catalog's custom rules
// registered.
func NewFormValidator() *FormValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	_ = v.RegisterValidation("priceformat", validPrice)
	_ = v.RegisterValidation("stockint", validStock)
	_ = v.RegisterValidation("imageurl", validImageURL)
	return &FormValidator{validate: v}
}

// Validate runs every field rule and returns the field -> message error map.
// An empty map means the form may be submitted.
func (fv *FormValidator) Validate(form ProductForm) map[string]string {
	return fv.collect(fv.validate.Struct(form))
}

// ValidateField re-checks a single field by its public name. Unknown field
// names validate clean. The result matches what Validate would report for
// that field.
func (fv *FormValidator) ValidateField(form ProductForm, field string) map[string]string {
	structField, ok := formFieldNames[field]
	if !ok {
		return map[string]string{}
	}
	return fv.collect(fv.validate.StructPartial(form, structField))
}

func (fv *FormValidator) collect(err error) map[string]string {
	errs := make(map[string]string)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			errs[fe.Field()] = fieldMessages[fe.Field()]
		}
	}
	return errs
}

func validPrice(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if !priceRe.MatchString(raw) {
		return false
	}
	price, err := strconv.ParseFloat(raw, 64)
	return err == nil && price > 0
}

func validStock(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Field().String())
	return err == nil && n >= 0
}

func validImageURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if imageExtRe.MatchString(raw) {
		return true
	}
	return httpURLRe.MatchString(raw) && imageKeywordRe.MatchString(raw)
}

// FormFromProduct seeds an edit form from an existing product. Callers run
// Validate on the result right away so pre-existing invalid data surfaces
// without any user interaction.
func FormFromProduct(p Product) ProductForm {
	return ProductForm{
		Name:        p.Name,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Category:    string(p.Category),
		Stock:       strconv.Itoa(p.Stock),
		Description: p.Description,
		Image:       p.Image,
	}
}

// ProductFromForm builds a Product from a validated form. The id is supplied
// by the caller: fresh for create, the existing one for edit.
func ProductFromForm(form ProductForm, id string) Product {
	price, _ := strconv.ParseFloat(form.Price, 64)
	stock, _ := strconv.Atoi(form.Stock)
	return Product{
		ID:          id,
		Name:        form.Name,
		Price:       price,
		Category:    Category(form.Category),
		Stock:       stock,
		Description: form.Description,
		Image:       form.Image,
	}
}
