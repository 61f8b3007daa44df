package entities

import "time"

type FeedType string

const (
	FeedTypeHTTP        FeedType = "http"
	FeedTypeFTP         FeedType = "ftp"
	FeedTypeSFTP        FeedType = "sftp"
	FeedTypeGoogleSheet FeedType = "gsheet"
	FeedTypeLocalFile   FeedType = "local"
)

// FeedSource describes where inventory data comes from and how to read it.
// Passwords and extra HTTP headers are stored encrypted; the feeds package
// decrypts them when opening a source.
type FeedSource struct {
	ID   uint     `gorm:"primaryKey" json:"id"`
	Name string   `gorm:"uniqueIndex;size:100" json:"name"`
	Type FeedType `gorm:"size:20" json:"type"`

	// URL is used by http/gsheet/local sources (for local it is a path).
	URL string `gorm:"size:2048" json:"url,omitempty"`

	// Host/Port/Path are used by ftp/sftp sources.
	Host string `gorm:"size:255" json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
	Path string `gorm:"size:1024" json:"path,omitempty"`

	Username          string `gorm:"size:255" json:"username,omitempty"`
	EncryptedPassword string `gorm:"type:text" json:"-"`

	// EncryptedHeaders holds optional HTTP request headers as encrypted JSON
	// (auth headers for URL feeds).
	EncryptedHeaders string `gorm:"type:text" json:"-"`

	// ColumnMapping is a JSON object mapping canonical field names to feed
	// column names. Jobs may override entries field-by-field.
	ColumnMapping string `gorm:"type:text" json:"column_mapping,omitempty"`

	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FeedSource) TableName() string {
	return "feed_sources"
}
