package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/aurasflow/backend/internal/config"
	"github.com/aurasflow/backend/internal/models"
	"github.com/aurasflow/backend/internal/session"
)

func TestProjectOwnershipIsolation(t *testing.T) {
	c := newTestContainer(t)
	alice := createTestUser(t, c.DB, "alice", 100)
	bob := createTestUser(t, c.DB, "bob", 100)
	project := createTestProject(t, c, alice.ID, "Alice's")

	// A foreign project is Forbidden, not NotFound.
	if _, err := c.Project.Get(bob.ID, project.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("get err = %v, want ErrForbidden", err)
	}
	if _, err := c.Project.Get(alice.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("get err = %v, want ErrNotFound", err)
	}

	if err := c.Project.Delete(bob.ID, project.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete err = %v, want ErrForbidden", err)
	}

	bobList, err := c.Project.List(bob.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bobList) != 0 {
		t.Errorf("bob sees %d projects, want 0", len(bobList))
	}
}

func TestProjectUpdatePartial(t *testing.T) {
	c := newTestContainer(t)
	user := createTestUser(t, c.DB, "carol", 100)
	project := createTestProject(t, c, user.ID, "Before")

	updated, err := c.Project.Update(user.ID, project.ID, &UpdateProjectRequest{
		Name:    "After",
		Website: "https://example.com",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "After" || updated.Website != "https://example.com" {
		t.Errorf("updated = %q/%q", updated.Name, updated.Website)
	}
	if updated.Type != "saas" {
		t.Errorf("type changed to %q, want saas untouched", updated.Type)
	}
}

func TestProjectDeleteCascades(t *testing.T) {
	c := newTestContainer(t)
	user := createTestUser(t, c.DB, "dave", 100)
	project := createTestProject(t, c, user.ID, "Doomed")

	if _, err := c.Project.AddSocialLink(user.ID, project.ID, &AddSocialLinkRequest{
		Platform: "instagram",
		Username: "doomed",
	}); err != nil {
		t.Fatalf("add social link: %v", err)
	}
	if _, err := c.Plan.Generate(context.Background(), user.ID, project.ID,
		&GeneratePlanRequest{Month: 6, Year: 2024}); err != nil {
		t.Fatalf("generate plan: %v", err)
	}

	if err := c.Project.Delete(user.ID, project.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var projects, links, plans, items int64
	c.DB.Model(&models.Project{}).Count(&projects)
	c.DB.Model(&models.SocialLink{}).Count(&links)
	c.DB.Model(&models.MarketingPlan{}).Count(&plans)
	c.DB.Model(&models.PlanItem{}).Count(&items)
	if projects != 0 || links != 0 || plans != 0 || items != 0 {
		t.Errorf("leftovers after delete: projects=%d links=%d plans=%d items=%d",
			projects, links, plans, items)
	}

	// The ledger entry for the plan survives the cascade.
	var ledger int64
	c.DB.Model(&models.CreditTransaction{}).Where("user_id = ?", user.ID).Count(&ledger)
	if ledger != 1 {
		t.Errorf("ledger entries = %d, want 1", ledger)
	}
}

func TestAddSocialLinkEncryptsCredentials(t *testing.T) {
	cfg := &config.Config{EncryptionKey: "test-master-key"}
	c := NewContainer(cfg, newTestDB(t), nil, nil, session.NewMemoryStore(0))
	if c.Secrets == nil {
		t.Fatal("cipher not initialized")
	}

	user := createTestUser(t, c.DB, "erin", 100)
	project := createTestProject(t, c, user.ID, "Acme")

	link, err := c.Project.AddSocialLink(user.ID, project.ID, &AddSocialLinkRequest{
		Platform: "twitter",
		APIKey:   "plain-api-key",
	})
	if err != nil {
		t.Fatalf("add social link: %v", err)
	}

	var stored models.SocialLink
	if err := c.DB.First(&stored, "id = ?", link.ID).Error; err != nil {
		t.Fatalf("load link: %v", err)
	}
	if stored.APIKey == "plain-api-key" {
		t.Error("API key stored in plaintext")
	}

	decrypted, err := c.Secrets.DecryptString(stored.APIKey)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if decrypted != "plain-api-key" {
		t.Errorf("decrypted = %q, want plain-api-key", decrypted)
	}
}

func TestListSocialLinks(t *testing.T) {
	c := newTestContainer(t)
	user := createTestUser(t, c.DB, "frank", 100)
	project := createTestProject(t, c, user.ID, "Acme")

	for _, platform := range []string{"instagram", "instagram", "twitter"} {
		if _, err := c.Project.AddSocialLink(user.ID, project.ID, &AddSocialLinkRequest{
			Platform: platform,
		}); err != nil {
			t.Fatalf("add social link: %v", err)
		}
	}

	links, err := c.Project.ListSocialLinks(user.ID, project.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Multiple links per platform are allowed.
	if len(links) != 3 {
		t.Errorf("links = %d, want 3", len(links))
	}
}
