package importer

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/licenzia/inventory-importer/pkg/db/models"
	"github.com/licenzia/inventory-importer/pkg/enums"
)

// Row is one candidate line from the spreadsheet, in file order. Values are
// carried as raw cell text; trimming and parsing happen during reconciliation.
type Row struct {
	// Position is the 1-based spreadsheet row number, header row included.
	Position         int
	ActivationKey    string
	Name             string
	ProductReference string
	Instructions     string
	Price            string
	SellerContact    string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := f.Tag.Get("field")
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

type itemFields struct {
	Name             string `field:"name" validate:"required"`
	ProductReference string `field:"product reference" validate:"required"`
}

// item converts the row into a persistable InventoryItem. The activation key
// is passed in already trimmed; remaining fields are trimmed here.
func (r Row) item(key string) (models.InventoryItem, error) {
	fields := itemFields{
		Name:             strings.TrimSpace(r.Name),
		ProductReference: strings.TrimSpace(r.ProductReference),
	}
	if err := validate.Struct(fields); err != nil {
		return models.InventoryItem{}, fmt.Errorf("%s", validationReason(err))
	}

	price := decimal.Zero
	if raw := strings.TrimSpace(r.Price); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return models.InventoryItem{}, fmt.Errorf("invalid price %q", raw)
		}
		if parsed.IsNegative() {
			return models.InventoryItem{}, fmt.Errorf("negative price %q", raw)
		}
		price = parsed
	}

	return models.InventoryItem{
		Name:                   fields.Name,
		ActivationKey:          key,
		ProductReference:       fields.ProductReference,
		ActivationInstructions: optional(r.Instructions),
		Status:                 enums.InventoryStatusAvailable,
		Price:                  price,
		SellerContact:          optional(r.SellerContact),
	}, nil
}

func validationReason(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	missing := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		missing = append(missing, fieldErr.Field())
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
