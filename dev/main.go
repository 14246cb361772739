package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ssotica-backend/internal/db"
	"ssotica-backend/pkg/configutil"
	"ssotica-backend/pkg/migrations"
)

const (
	stateDir        = ".dev/parcelas"
	searchLogFile   = ".dev/parcelas/search_log.db"
	localConfigFile = "cmd/parcelas-server/config.local.json5"
)

const localConfigTemplate = `{
  // not committed, fill in the SSÓtica account used by the integration
  ssotica: {
    username: "",
    password: "",
  },
}
`

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll(stateDir)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll(stateDir, 0777)
	if err != nil {
		return err
	}

	database, err := migrations.OpenAndMigrateDB(db.Schema, configutil.Libsql{File: searchLogFile})
	if err != nil {
		return err
	}
	database.Close()
	slog.Info("search log ready", "path", searchLogFile)

	err = writeLocalConfig()
	if err != nil {
		return err
	}
	return nil
}

func writeLocalConfig() error {
	_, err := os.Stat(localConfigFile)
	if err == nil {
		slog.Info("local config already exists", "path", localConfigFile)
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	err = os.MkdirAll(filepath.Dir(localConfigFile), 0777)
	if err != nil {
		return err
	}
	err = os.WriteFile(localConfigFile, []byte(localConfigTemplate), 0600)
	if err != nil {
		return err
	}
	slog.Info("wrote local config template, fill in the credentials", "path", localConfigFile)
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
