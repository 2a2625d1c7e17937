package validator

import (
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/scoutscape/internal/domain"
)

var (
	validate *validator.Validate
	catalog  atomic.Pointer[domain.CategoryCatalog]
)

func init() {
	catalog.Store(domain.DefaultCategoryCatalog())
	validate = validator.New()
	_ = validate.RegisterValidation("period", validatePeriod)
	_ = validate.RegisterValidation("category", validateCategory)
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// UseCatalog задаёт каталог, по которому проверяется тег category
func UseCatalog(c *domain.CategoryCatalog) {
	if c != nil {
		catalog.Store(c)
	}
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}

// period: пустое значение, AM или PM без учёта регистра
func validatePeriod(fl validator.FieldLevel) bool {
	v := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
	return v == "" || v == string(domain.PeriodAM) || v == string(domain.PeriodPM)
}

// category: ключ из текущего каталога
func validateCategory(fl validator.FieldLevel) bool {
	return catalog.Load().Contains(domain.Category(fl.Field().String()))
}
