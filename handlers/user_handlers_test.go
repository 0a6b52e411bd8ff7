package handlers

import (
	"net/http"
	"strings"
	"testing"

	"CafeBackend/models"
	"github.com/gin-gonic/gin"
)

func TestValidateLogin(t *testing.T) {
	valid := []string{"alice", "user_01", "some-login", "abcd"}
	for _, login := range valid {
		if !ValidateLogin(login) {
			t.Errorf("expected %q to be a valid login", login)
		}
	}

	invalid := []string{"", "abc", strings.Repeat("a", 21), "has space", "名字"}
	for _, login := range invalid {
		if ValidateLogin(login) {
			t.Errorf("expected %q to be an invalid login", login)
		}
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	if !ValidatePhoneNumber("") {
		t.Error("empty phone number should be allowed")
	}
	if !ValidatePhoneNumber("+886912345678") {
		t.Error("13 character phone number should be valid")
	}
	if ValidatePhoneNumber("12345") {
		t.Error("phone number shorter than 13 characters should be invalid")
	}
	if ValidatePhoneNumber("+8869123456789") {
		t.Error("phone number longer than 13 characters should be invalid")
	}
}

func TestValidateFavoriteItems(t *testing.T) {
	if !ValidateFavoriteItems("") {
		t.Error("empty favorite items should be valid")
	}
	if !ValidateFavoriteItems(strings.Repeat("a", 400)) {
		t.Error("400 character favorite items should be valid")
	}
	if ValidateFavoriteItems(strings.Repeat("a", 401)) {
		t.Error("favorite items over 400 characters should be invalid")
	}
}

func TestValidatePassword(t *testing.T) {
	valid := []string{"Password1!", "Aa1!aaaa", "S3cret-Pass"}
	for _, password := range valid {
		if !ValidatePassword(password) {
			t.Errorf("expected %q to be a valid password", password)
		}
	}

	invalid := []string{
		"",
		"Aa1!a",                             // too short
		strings.Repeat("Aa1!", 13),          // too long
		"password1!",                        // no upper
		"PASSWORD1!",                        // no lower
		"Password!!",                        // no digit
		"Password11",                        // no special
		"Password 1!",                       // contains space
	}
	for _, password := range invalid {
		if ValidatePassword(password) {
			t.Errorf("expected %q to be an invalid password", password)
		}
	}
}

func TestRegisterDuplicateLogin(t *testing.T) {
	db := getTestDB(t)

	registerReq := gin.H{
		"login":       "alice123",
		"password":    "Password1!",
		"phoneNumber": "+886912345678",
	}

	c, w := newTestContext(t, "", registerReq, nil)
	RegisterHandler(c, db)
	if w.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	c, w = newTestContext(t, "", registerReq, nil)
	RegisterHandler(c, db)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if msg := responseBody(t, w)["message"]; msg != models.ErrDuplicateLogin.Error() {
		t.Errorf("duplicate register message = %v", msg)
	}

	// only the first registration may exist, always as Customer
	var count int64
	db.Model(&models.User{}).Where("login = ?", "alice123").Count(&count)
	if count != 1 {
		t.Errorf("user rows for alice123 = %d, want 1", count)
	}
	var user models.User
	if err := db.First(&user, "login = ?", "alice123").Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if user.Role != models.RoleCustomer {
		t.Errorf("registered role = %s, want Customer", user.Role)
	}
}
