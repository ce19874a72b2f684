// Package migrations embeds the forward SQL migrations into the binary.
//
// The files create the ble table for installs that own their database.
// Deployments reading the plant's PostgreSQL ble table leave
// database.migrate off and never run them. Each *.down.sql beside an up
// file is the manual rollback and is not embedded.
package migrations

import (
	"embed"

	"github.com/nerrad567/pillarmap-api/internal/infrastructure/database"
)

//go:embed *.up.sql
var upFiles embed.FS

func init() {
	database.MigrationsFS = upFiles
	database.MigrationsDir = "."
}
