package security

// In-memory client registry (replace with DB/config later)
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"checkout.read","checkout.write"}
	Enabled bool
}

var Clients = map[string]Client{
	"contratto-web":  {ID: "contratto-web", Secret: "web-bff-secret", Perms: []string{"checkout.read", "checkout.write"}, Enabled: true},
	"svc-backoffice": {ID: "svc-backoffice", Secret: "backoffice-secret", Perms: []string{"checkout.read"}, Enabled: true},
	"svc-analytics":  {ID: "svc-analytics", Secret: "ana-secret", Perms: []string{"checkout.read"}, Enabled: true},
}
