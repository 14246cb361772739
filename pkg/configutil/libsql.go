package configutil

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Libsql points either at a local sqlite file or at a remote libsql server.
type Libsql struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// Driver returns the database/sql driver name and data source for the config.
func (config Libsql) Driver() (driver, source string, err error) {
	if config.Url == "" {
		if config.File == "" {
			return "", "", fmt.Errorf("neither a database file nor url was specified")
		}
		return "sqlite", config.File, nil
	}

	values := url.Values{}
	if config.AuthToken != "" {
		values.Add("authToken", config.AuthToken)
	}
	source = config.Url
	if len(values) > 0 {
		source += "?" + values.Encode()
	}
	return "libsql", source, nil
}

func (config Libsql) OpenDB() (*sql.DB, error) {
	driver, source, err := config.Driver()
	if err != nil {
		return nil, err
	}
	return sql.Open(driver, source)
}
