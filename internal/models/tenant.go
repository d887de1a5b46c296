package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleetquote/internal/costs"
)

const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// Tenant is a transport company using the service. Every other document
// carries the tenant's hex id in tenant_id.
type Tenant struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Slug      string             `bson:"slug" json:"slug"` // unique
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// NewTenant returns an active tenant named name with its slug filled in.
func NewTenant(name string) *Tenant {
	name = strings.TrimSpace(name)
	return &Tenant{Name: name, Slug: Slugify(name), Status: TenantStatusActive}
}

// IsActive reports whether the tenant's users may use the API.
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Slugify lower-cases name, strips accents and joins the words with dashes:
// "Transportes Ñandú S.A." becomes "transportes-nandu-s-a".
func Slugify(name string) string {
	return strings.ReplaceAll(costs.NormalizePlace(name), " ", "-")
}
