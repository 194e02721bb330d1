// Package shapefile wraps the shp2pgsql command line tool (part of
// PostGIS) used to import admin boundary shapefiles.
package shapefile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/minus34/gnaf-loader-go/discovery"
)

// The boundary shapefiles are all GDA94 geographics.
const srid = "4283"

// Tool invokes shp2pgsql piped into psql. The password goes to psql via
// PGPASSWORD so it never appears in the process argument list.
type Tool struct {
	host     string
	port     uint16
	user     string
	database string
	password string
}

// NewTool builds a Tool from the same connection string the pool uses.
func NewTool(connectionString string) (*Tool, error) {
	config, err := pgconn.ParseConfig(connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse connection string for psql")
	}

	return &Tool{
		host:     config.Host,
		port:     config.Port,
		user:     config.User,
		database: config.Database,
		password: config.Password,
	}, nil
}

// Import loads one shapefile (or standalone DBF) into Postgres and returns
// "SUCCESS" or an error message. Callers treat any other result as a
// per-file warning, not a fatal error.
func (t *Tool) Import(ctx context.Context, item discovery.ShapefileItem) string {
	args := []string{"-s", srid}

	if item.DeleteTable {
		args = append(args, "-d")
		if item.Spatial {
			// spatial index on the fresh table
			args = append(args, "-I")
		}
	} else {
		args = append(args, "-a")
	}

	if !item.Spatial {
		// attribute data only, no geometry column
		args = append(args, "-n")
	}

	args = append(args, item.FilePath, item.Schema+"."+item.Table)

	shp := exec.CommandContext(ctx, "shp2pgsql", args...)
	psql := exec.CommandContext(ctx, "psql",
		"-h", t.host,
		"-p", strconv.Itoa(int(t.port)),
		"-U", t.user,
		"-d", t.database,
		"-q", "-v", "ON_ERROR_STOP=1")
	psql.Env = append(os.Environ(), "PGPASSWORD="+t.password)

	pipe, err := shp.StdoutPipe()
	if err != nil {
		return fmt.Sprintf("IMPORT OF %s FAILED : %v", item.FilePath, err)
	}
	psql.Stdin = pipe

	var shpErr, psqlErr bytes.Buffer
	shp.Stderr = &shpErr
	psql.Stderr = &psqlErr

	if err := shp.Start(); err != nil {
		return fmt.Sprintf("IMPORT OF %s FAILED : %v", item.FilePath, err)
	}
	if err := psql.Start(); err != nil {
		_ = shp.Wait()
		return fmt.Sprintf("IMPORT OF %s FAILED : %v", item.FilePath, err)
	}

	if err := shp.Wait(); err != nil {
		_ = psql.Wait()
		return fmt.Sprintf("IMPORT OF %s FAILED : shp2pgsql : %v : %s", item.FilePath, err, shpErr.String())
	}
	if err := psql.Wait(); err != nil {
		return fmt.Sprintf("IMPORT OF %s FAILED : psql : %v : %s", item.FilePath, err, psqlErr.String())
	}

	return "SUCCESS"
}
