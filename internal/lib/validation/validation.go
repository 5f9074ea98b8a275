// Package validation настраивает валидатор форм клиента и переводит
// ошибки валидации в человекочитаемый текст.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

var expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)

// New возвращает валидатор, который называет поля по json-тегам и
// понимает тег expiry (срок действия карты MM/YY).
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return ValidExpiry(fl.Field().String())
	})
	return v
}

// ValidExpiry проверяет формат MM/YY.
func ValidExpiry(s string) bool {
	m := expiryRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	_, err := strconv.Atoi(m[2])
	return err == nil
}

// NotExpired сообщает, что карта со сроком MM/YY действует в момент now.
func NotExpired(s string, now time.Time) bool {
	m := expiryRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	// Карта действует до конца указанного месяца.
	end := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return now.Before(end)
}

// Message переводит ошибку валидации в текст для пользователя.
func Message(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	var msgs []string
	for _, fe := range errs {
		switch fe.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s characters long", fe.Field(), fe.Param()))
		case "len":
			msgs = append(msgs, fmt.Sprintf("field %s must be exactly %s characters long", fe.Field(), fe.Param()))
		case "numeric":
			msgs = append(msgs, fmt.Sprintf("field %s can contain only numbers", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", fe.Field(), fe.Param()))
		case "expiry":
			msgs = append(msgs, fmt.Sprintf("field %s must be in format MM/YY", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not a valid", fe.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}
