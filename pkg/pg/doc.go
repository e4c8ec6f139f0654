// Package pg bootstraps the PostgreSQL layer used by the billing stores. It
// wraps pgx/v5 connection pooling, goose schema migrations, and a health
// check behind a small API so the server binary can bring up a ready
// database in a few lines.
//
// Connect retries with linear back-off until the database accepts
// connections, Migrate applies the SQL files under the configured directory
// before the service starts serving traffic, and Healthcheck plugs into the
// HTTP health endpoint.
//
// Error helpers such as [IsDuplicateKeyError] classify *pgconn.PgError
// values so store code never matches on SQLSTATE strings directly.
package pg
