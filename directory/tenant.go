package directory

// Tenant represents an isolated organizational scope. Messages and presence
// never cross tenant boundaries.
type Tenant struct {
	ID     string `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Domain string `json:"domain" bson:"domain"`
}
