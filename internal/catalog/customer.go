package catalog

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"sales-dashboard/internal/store"
)

// Customer is a catalog entry for a buyer.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	ErrInvalidEmail = errors.New("email must look like local@domain.tld")
	ErrInvalidPhone = errors.New("phone must contain digits only")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateCustomer checks name, email and phone before a write.
func ValidateCustomer(c Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	if !emailPattern.MatchString(c.Email) {
		return ErrInvalidEmail
	}
	if !phonePattern.MatchString(c.Phone) {
		return ErrInvalidPhone
	}
	return nil
}

func customerDoc(c Customer) store.Doc {
	return store.Doc{
		"name":  c.Name,
		"email": c.Email,
		"phone": c.Phone,
	}
}

func customerFromDoc(doc store.Doc) Customer {
	return Customer{
		ID:        store.AsString(doc["id"]),
		Name:      store.AsString(doc["name"]),
		Email:     store.AsString(doc["email"]),
		Phone:     store.AsString(doc["phone"]),
		CreatedAt: store.AsTime(doc["createdAt"]),
	}
}
