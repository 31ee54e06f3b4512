package social

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/config"
)

// Publisher posts an approved listing to external social channels. Callers
// treat every failure as best-effort: log, record, move on.
type Publisher interface {
	PostListing(listing *model.Listing) (postID string, err error)
}

// MetaPublisher posts to a Facebook page via the Graph API.
type MetaPublisher struct {
	accessToken string
	pageID      string
	client      *http.Client
}

func NewMetaPublisher(cfg config.SocialConfig) *MetaPublisher {
	return &MetaPublisher{
		accessToken: cfg.MetaAccessToken,
		pageID:      cfg.FacebookPageID,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *MetaPublisher) PostListing(listing *model.Listing) (string, error) {
	if p.accessToken == "" || p.pageID == "" {
		return "", fmt.Errorf("social publishing is not configured")
	}

	body := map[string]string{
		"message":      buildCaption(listing),
		"access_token": p.accessToken,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://graph.facebook.com/v19.0/%s/feed", p.pageID)
	resp, err := p.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		ID    string `json:"id"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("facebook: %s", result.Error.Message)
	}
	if result.ID == "" {
		return "", fmt.Errorf("facebook: empty post id (status %d)", resp.StatusCode)
	}
	return "fb:" + result.ID, nil
}

func buildCaption(listing *model.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d Bed %s for rent", listing.Beds, listing.BuildingType)
	if listing.Address != "" {
		fmt.Fprintf(&b, " at %s", listing.Address)
	}
	fmt.Fprintf(&b, " - $%d/mo", listing.Rent)
	if listing.Location != "" {
		fmt.Fprintf(&b, "\n%s, Syracuse NY", listing.Location)
	}
	return b.String()
}
