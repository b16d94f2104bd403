package cosmos

import "github.com/Sternrassler/docdb-client/pkg/session"

const (
	itemsDatabases   = "Databases"
	itemsCollections = "DocumentCollections"
	itemsUsers       = "Users"
	itemsDocuments   = "Documents"
)

// ListDatabases lists the databases of the account.
func (c *Client) ListDatabases(opts ListOptions) *Pager[Database] {
	scope := session.Key{Account: c.account}
	req := c.listRequest(ResourceDatabases, scope, opts, "dbs")
	return newListPager[Database](c, req, itemsDatabases, opts.continuation())
}

// ListCollections lists the collections of the database.
func (d *DatabaseClient) ListCollections(opts ListOptions) *Pager[Collection] {
	c := d.client
	scope := session.Key{Account: c.account, Database: d.name}
	req := c.listRequest(ResourceCollections, scope, opts, "dbs", d.name, "colls")
	return newListPager[Collection](c, req, itemsCollections, opts.continuation())
}

// ListUsers lists the users of the database.
func (d *DatabaseClient) ListUsers(opts ListOptions) *Pager[User] {
	c := d.client
	scope := session.Key{Account: c.account, Database: d.name}
	req := c.listRequest(ResourceUsers, scope, opts, "dbs", d.name, "users")
	return newListPager[User](c, req, itemsUsers, opts.continuation())
}
