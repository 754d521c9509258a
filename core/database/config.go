package database

const (
	// DriverPostgres selects PostgreSQL through lib/pq.
	DriverPostgres = "postgres"
	// DriverSQLite selects an embedded SQLite file through modernc.org/sqlite.
	DriverSQLite = "sqlite"
)

// Config holds database connection settings.
type Config struct {
	Driver         string `yaml:"driver" envconfig:"DB_DRIVER"`
	Path           string `yaml:"path" envconfig:"DB_PATH"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// PostgresDSN returns the key=value connection string used by lib/pq.
func (c Config) PostgresDSN() string {
	return "user=" + c.User + " password=" + c.Password + " host=" + c.Host +
		" port=" + c.Port + " dbname=" + c.Name + " sslmode=" + c.sslMode()
}

// MigrateURL returns the database URL understood by golang-migrate.
func (c Config) MigrateURL() string {
	if c.Driver == DriverSQLite {
		return "sqlite://" + c.Path
	}
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port +
		"/" + c.Name + "?sslmode=" + c.sslMode()
}

func (c Config) sslMode() string {
	if c.SSLMode == "" {
		return "disable"
	}
	return c.SSLMode
}
