package validation

import (
	"strings"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Email проверяет формат email
func Email(raw string) error {
	if err := validate.Var(raw, "required,email"); err != nil {
		return domain.NewValidationError("email", "Invalid email format.")
	}
	return nil
}

// EmailUnique проверяет отсутствие email в переданном множестве
func EmailUnique(email string, existing map[string]struct{}) error {
	if _, ok := existing[strings.ToLower(email)]; ok {
		return domain.NewValidationError("email", "Email "+email+" already exists.")
	}
	return nil
}

// Phone проверяет формат телефона и возвращает нормализованное значение.
// Пустой телефон считается валидным: поле опционально.
// Допустимые разделители: пробелы, дефисы, точки, скобки.
func Phone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}

	var digits strings.Builder
	rest := trimmed
	plus := strings.HasPrefix(rest, "+")
	if plus {
		rest = rest[1:]
	}

	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// separator, skip
		default:
			return "", domain.NewValidationError("phone", "Invalid phone number format.")
		}
	}

	if digits.Len() < 7 || digits.Len() > 15 {
		return "", domain.NewValidationError("phone", "Invalid phone number.")
	}

	if plus {
		return "+" + digits.String(), nil
	}
	return digits.String(), nil
}

// Price проверяет, что цена строго положительна
func Price(value decimal.Decimal) error {
	if value.Cmp(decimal.Zero) <= 0 {
		return domain.NewValidationError("price", "Price must be positive.")
	}
	return nil
}

// Stock проверяет, что остаток не отрицателен
func Stock(value int) error {
	if value < 0 {
		return domain.NewValidationError("stock", "Stock cannot be negative.")
	}
	return nil
}

// NonEmpty проверяет, что коллекция не пуста
func NonEmpty(field, noun string, length int) error {
	if length == 0 {
		return domain.NewValidationError(field, "At least one "+noun+" must be selected.")
	}
	return nil
}
