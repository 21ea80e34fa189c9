package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_FieldPaths(t *testing.T) {
	sub := OrderSubmission{
		CustomerName: "Jane",
		Email:        "jane@",
		Phone:        "555",
		Address:      "1 Main St",
		Total:        1299,
		Items: []OrderItem{
			{MenuItemID: 1, Name: "Classic Aura Burger", Price: 1299, Quantity: 1},
			{MenuItemID: 0, Name: "Ghost", Price: 100, Quantity: 1},
		},
	}

	err := Validate(sub)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field("email") != "must be a valid email address" {
		t.Errorf("unexpected email message %q", verr.Field("email"))
	}
	if verr.Field("items[1].menuItemId") == "" {
		t.Errorf("expected error on items[1].menuItemId, got %+v", verr.Fields)
	}
	if verr.Field("items[0].menuItemId") != "" {
		t.Error("first item is valid")
	}
}

func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name  string
		value any
		field string
		want  string
	}{
		{"short password", Credentials{Username: "alice", Password: "short"}, "password", "must be at least 8 characters"},
		{"multibyte password over bcrypt limit", Credentials{Username: "alice", Password: strings.Repeat("é", 40)}, "password", "must be at most 72 bytes"},
		{"password over 72 characters", Credentials{Username: "alice", Password: strings.Repeat("a", 73)}, "password", "must be at most 72 characters"},
		{"symbol username", Credentials{Username: "al!ce", Password: "password123"}, "username", "must contain only letters and digits"},
		{"rating too high", ReviewSubmission{Name: "A", Rating: 6, Comment: "ok"}, "rating", "must be at most 5"},
		{"no items", OrderSubmission{CustomerName: "A", Email: "a@b.co", Phone: "1", Address: "x", Items: []OrderItem{}}, "items", "must contain at least 1 entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			if !errors.As(Validate(tt.value), &verr) {
				t.Fatal("expected ValidationError")
			}
			if got := verr.Field(tt.field); got != tt.want {
				t.Errorf("%s: got %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(MessageSubmission{Name: "Ann", Email: "ann@example.com", Message: "Do you deliver late?"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
