package config

import (
	"net"
	"os"

	"github.com/go-sql-driver/mysql"
)

// GetDatabaseDSN returns the MySQL DSN for the readings archive.
// Individual DB_* variables win, then DATABASE_DSN, then a local default.
func GetDatabaseDSN() string {
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_NAME")

	if user != "" && password != "" && host != "" && port != "" && database != "" {
		return formatDSN(user, password, net.JoinHostPort(host, port), database)
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn
	}

	return formatDSN("weatheralert", "weatheralert", "localhost:3306", "weatheralert")
}

func formatDSN(user, password, addr, database string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}
