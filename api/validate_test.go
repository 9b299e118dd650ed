package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorStruct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		payload any
		fields  []string
	}{
		{"valid credentials", Credentials{Email: "ada@example.com", Password: "secret"}, nil},
		{"missing email", Credentials{Password: "secret"}, []string{"email"}},
		{"blank password", Credentials{Email: "ada@example.com", Password: "   "}, []string{"password"}},
		{"bad email", &Credentials{Email: "ada", Password: "x"}, []string{"email"}},
		{"password mismatch", Registration{
			Username: "ada", Email: "ada@example.com", Password: "longenough", PasswordConfirm: "different",
		}, []string{"password_confirm"}},
		{"short password", Registration{
			Username: "ada", Email: "ada@example.com", Password: "short", PasswordConfirm: "short",
		}, []string{"password"}},
		{"unknown payment method", PaymentRequest{
			Plan: 1, Amount: "9.99", Currency: "MGA", PaymentMethod: "cheque",
		}, []string{"payment_method"}},
		{"mobile money", PaymentRequest{
			Plan: 1, Amount: "9.99", Currency: "MGA", PaymentMethod: "mvola",
		}, nil},
		{"progress out of range", ProgressUpdate{CourseID: 3, ProgressPercentage: intPtr(120)}, []string{"progress_percentage"}},
		{"progress without course", ProgressUpdate{}, []string{"CourseID"}},
		{"bad picture", ProfileUpdate{Username: "ada", Email: "ada@example.com", ProfilePicture: "not a url"}, []string{"profile_picture"}},
		{"not a struct", 42, nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.payload)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			fields := v.Fields(err)
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
				assert.NotEmpty(t, fields[f])
			}
		})
	}
}

func TestValidatorMessages(t *testing.T) {
	v := NewValidator()

	fields := v.Fields(v.Struct(Credentials{Email: "ada@example.com", Password: " "}))
	assert.Equal(t, "this field cannot be blank", fields["password"])

	fields = v.Fields(v.Struct(Credentials{Password: "x"}))
	assert.Equal(t, "email is a required field", fields["email"])

	assert.Nil(t, v.Fields(assert.AnError))
}

func intPtr(n int) *int {
	return &n
}
