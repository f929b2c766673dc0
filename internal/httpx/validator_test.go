package httpx

import (
	"strings"
	"testing"
)

type validatedInput struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=50"`
	Password string `validate:"required,password_strength"`
	Day      string `validate:"omitempty,weekday"`
	Time     string `validate:"omitempty,clock"`
	Score    int    `validate:"gte=0,lte=10"`
}

func validInput() validatedInput {
	return validatedInput{Email: "test@example.com", Username: "testuser", Password: "Test1234"}
}

func hasFieldError(details []ErrorDetail, field string) bool {
	for _, d := range details {
		if d.Field == field {
			return true
		}
	}
	return false
}

func TestValidateStruct_ValidInput(t *testing.T) {
	s := validInput()
	s.Day, s.Time, s.Score = "Saturdays", "23:30", 9

	if errs := ValidateStruct(s); len(errs) != 0 {
		t.Errorf("Expected no validation errors, got %v", errs)
	}
}

func TestValidateStruct_RequiredFields(t *testing.T) {
	errs := ValidateStruct(validatedInput{})

	for _, field := range []string{"email", "username", "password"} {
		found := false
		for _, e := range errs {
			if e.Field == field && strings.Contains(e.Message, "required") {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %s required error, got %v", field, errs)
		}
	}
}

func TestValidateStruct_PasswordStrength(t *testing.T) {
	testCases := []struct {
		password string
		valid    bool
	}{
		{"Test1234", true},
		{"letters and 1", true},
		{"short1", false},
		{"noNumbersHere", false},
		{"1234567890", false},
	}

	for _, tc := range testCases {
		s := validInput()
		s.Password = tc.password

		got := hasFieldError(ValidateStruct(s), "password")
		if tc.valid && got {
			t.Errorf("Password %q should be valid but got error", tc.password)
		}
		if !tc.valid && !got {
			t.Errorf("Password %q should be invalid but no error", tc.password)
		}
	}
}

func TestValidateStruct_Broadcast(t *testing.T) {
	testCases := []struct {
		day, time string
		field     string
	}{
		{day: "Mondays", time: "00:00"},
		{day: "sunday", time: "23:59"},
		{day: "Someday", time: "12:00", field: "day"},
		{day: "Friday", time: "24:00", field: "time"},
		{day: "Friday", time: "7:30", field: "time"},
	}

	for _, tc := range testCases {
		s := validInput()
		s.Day, s.Time = tc.day, tc.time

		errs := ValidateStruct(s)
		if tc.field == "" && len(errs) != 0 {
			t.Errorf("%s %s should be valid, got %v", tc.day, tc.time, errs)
		}
		if tc.field != "" && !hasFieldError(errs, tc.field) {
			t.Errorf("%s %s should fail on %s, got %v", tc.day, tc.time, tc.field, errs)
		}
	}
}

func TestValidateStruct_ScoreRange(t *testing.T) {
	for score, valid := range map[int]bool{0: true, 10: true, -1: false, 11: false} {
		s := validInput()
		s.Score = score

		got := hasFieldError(ValidateStruct(s), "score")
		if valid == got {
			t.Errorf("Score %d: valid=%v but error=%v", score, valid, got)
		}
	}
}
