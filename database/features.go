package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Features reports what the target server supports. The loader degrades
// gracefully when optional features are missing.
type Features struct {
	PostgresVersion string
	PostGISVersion  string

	// ST_Subdivide (PostGIS 2.2+) is used to split boundaries into small
	// polygons for much faster point-in-polygon joins.
	SubdivideSupported bool
}

// DetectFeatures adds PostGIS to the database and probes optional
// functionality. A failure to create the extension is fatal: it means the
// database user lacks privileges or PostGIS isn't installed.
func DetectFeatures(ctx context.Context, db DB) (Features, error) {
	var feats Features

	_, err := db.Exec(ctx, "SET search_path = public, pg_catalog; CREATE EXTENSION IF NOT EXISTS postgis")
	if err != nil {
		return feats, errors.Wrap(err,
			"unable to add PostGIS extension\nACTION: check your Postgres user privileges or PostGIS install")
	}

	if err := db.QueryRow(ctx, "SELECT version()").Scan(&feats.PostgresVersion); err != nil {
		return feats, errors.Wrap(err, "unable to read Postgres version")
	}

	if err := db.QueryRow(ctx, "SELECT postgis_lib_version()").Scan(&feats.PostGISVersion); err != nil {
		return feats, errors.Wrap(err, "unable to read PostGIS version")
	}

	err = db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = 'st_subdivide')").Scan(&feats.SubdivideSupported)
	if err != nil {
		// older catalogs only - treat as unsupported
		log.Warnf("couldn't probe for ST_Subdivide support : %v", err)
		feats.SubdivideSupported = false
	}

	return feats, nil
}

// SchemaExists reports whether a schema is present in the database.
func SchemaExists(ctx context.Context, db Querier, schema string) (bool, error) {
	var name string
	err := db.QueryRow(ctx,
		"SELECT schema_name FROM information_schema.schemata WHERE schema_name = $1", schema).Scan(&name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
