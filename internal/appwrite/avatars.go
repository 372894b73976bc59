package appwrite

import (
	"fmt"
	"net/url"
)

// AvatarService builds URLs for provider-rendered avatars.
type AvatarService struct {
	c *Client
}

// InitialsURL returns the initials avatar endpoint for a display name. The
// image is rendered by the provider; no call is made here.
func (s *AvatarService) InitialsURL(name string) string {
	params := url.Values{}
	params.Set("name", name)
	params.Set("project", s.c.project)
	return s.c.endpoint + "/avatars/initials?" + params.Encode()
}

// StorageService builds URLs for files held in provider buckets.
type StorageService struct {
	c *Client
}

// FileViewURL returns the public view endpoint for a stored file.
func (s *StorageService) FileViewURL(bucketID, fileID string) string {
	params := url.Values{}
	params.Set("project", s.c.project)
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/view?%s", s.c.endpoint, bucketID, fileID, params.Encode())
}
