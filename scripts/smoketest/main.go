package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/umt-lostfound/lostfound-api/models"
)

// Walks a running API through register, post, claim and approve.
// Usage: BASE_URL=http://localhost:8080 ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./scripts/smoketest
func main() {
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	domain := os.Getenv("SMOKE_EMAIL_DOMAIN")
	if domain == "" {
		domain = "umt.edu"
	}
	c := &client{base: base, http: &http.Client{Timeout: 15 * time.Second}}
	run := uuid.NewString()[:8]

	alice := c.register(fmt.Sprintf("alice+%s@%s", run, domain), "Alice Smoke")
	bob := c.register(fmt.Sprintf("bob+%s@%s", run, domain), "Bob Smoke")

	var item models.Item
	c.must("POST", "/api/items", alice, models.CreateItemRequest{
		Title:             "Blue backpack",
		Description:       "Left in the library on the second floor",
		Category:          models.CategoryBags,
		Location:          "Mansfield Library",
		Urgency:           models.UrgencyMedium,
		Type:              models.ItemTypeLost,
		ContactPreference: "email",
	}, &item)
	zap.S().Infow("item posted", "itemId", item.ID.Hex())

	c.expect(http.StatusBadRequest, "POST", "/api/claims", alice, models.CreateClaimRequest{
		ItemID:  item.ID.Hex(),
		Message: "Trying to claim my own backpack",
	}, nil)
	zap.S().Info("own-item claim rejected")

	var claim models.ClaimRequest
	c.must("POST", "/api/claims", bob, models.CreateClaimRequest{
		ItemID:       item.ID.Hex(),
		Message:      "I found this near the front desk",
		ContactPhone: "406-243-0211",
	}, &claim)
	zap.S().Infow("claim filed", "claimId", claim.ID.Hex())

	adminToken := c.login(os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"))
	var decided models.ClaimRequest
	c.must("PUT", "/api/admin/claims/"+claim.ID.Hex(), adminToken,
		models.DecideClaimRequest{Status: models.ClaimStatusApproved}, &decided)

	var after models.Item
	c.must("GET", "/api/items/"+item.ID.Hex(), "", nil, &after)
	if after.Status != models.ItemStatusClaimed {
		zap.S().Fatalw("item was not claimed", "status", after.Status)
	}
	zap.S().Infow("smoke test passed", "claimStatus", decided.Status, "itemStatus", after.Status)
}

type client struct {
	base string
	http *http.Client
}

func (c *client) register(email, name string) string {
	var resp models.LoginResponse
	c.must("POST", "/api/auth/register", "", models.RegisterRequest{
		Email: email, FullName: name, Password: "smoke-test-pass",
	}, &resp)
	return resp.AccessToken
}

func (c *client) login(email, password string) string {
	var resp models.LoginResponse
	c.must("POST", "/api/auth/login", "", models.LoginRequest{Email: email, Password: password}, &resp)
	return resp.AccessToken
}

func (c *client) must(method, path, token string, body, out interface{}) {
	c.expect(http.StatusOK, method, path, token, body, out)
}

func (c *client) expect(status int, method, path, token string, body, out interface{}) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			zap.S().With(err).Fatal("failed to encode request")
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		zap.S().With(err).Fatal("failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		zap.S().With(err).Fatalw("request failed", "method", method, "path", path)
	}
	defer resp.Body.Close()
	if resp.StatusCode != status {
		var e models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		zap.S().Fatalw("unexpected status", "method", method, "path", path,
			"status", resp.StatusCode, "want", status, "error", e.Error, "message", e.Message)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			zap.S().With(err).Fatal("failed to decode response")
		}
	}
}
