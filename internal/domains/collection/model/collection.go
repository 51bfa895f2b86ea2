package model

import (
	"errors"
	"time"
)

var ErrCollectionNotFound = errors.New("collection not found")

// Editor roles on a collection.
const (
	RoleOwner  = "OWNER"
	RoleEditor = "EDITOR"
)

// Default artwork applied to a freshly purchased collection until the
// owner uploads their own.
var (
	DefaultIcon = ImageAsset{
		CdnURL:      "https://ucarecdn.com/d531f64b-70a5-485e-8b6c-e0df28f0db21/",
		OriginalURL: "https://ucarecdn.com/d531f64b-70a5-485e-8b6c-e0df28f0db21/",
		MimeType:    "image/jpeg",
	}
	DefaultHeader = ImageAsset{
		CdnURL:      "https://images.unsplash.com/photo-1663275162414-64dba99065a2?ixlib=rb-1.2.1&ixid=MnwxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8&auto=format&fit=crop&w=1528&q=80",
		OriginalURL: "https://images.unsplash.com/photo-1663275162414-64dba99065a2?ixlib=rb-1.2.1&ixid=MnwxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8&auto=format&fit=crop&w=1528&q=80",
		MimeType:    "image/jpeg",
	}
)

// ImageAsset is the stored JSON shape for collection artwork.
type ImageAsset struct {
	CdnURL      string `json:"cdnUrl"`
	OriginalURL string `json:"originalUrl"`
	MimeType    string `json:"mimeType"`
}

// Collection is a curated set of modules, created through a paid
// purchase and optionally upgraded to a higher tier later.
type Collection struct {
	ID               int64      `json:"id" db:"id"`
	Suffix           string     `json:"suffix" db:"suffix"`
	CollectionTypeID int64      `json:"collection_type_id" db:"collection_type_id"`
	Icon             ImageAsset `json:"icon" db:"icon"`
	Header           ImageAsset `json:"header" db:"header"`
	Upgraded         bool       `json:"upgraded" db:"upgraded"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Editor binds a workspace to a collection with a role.
type Editor struct {
	ID           int64  `json:"id" db:"id"`
	CollectionID int64  `json:"collection_id" db:"collection_id"`
	WorkspaceID  int64  `json:"workspace_id" db:"workspace_id"`
	Role         string `json:"role" db:"role"`
}
