// Package pipeline orchestrates a full load: raw GNAF, admin boundaries,
// flattened reference tables, boundary tagging and QA, in that order. Each
// part only starts once the previous one has finished, because each reads
// what the one before it wrote.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/minus34/gnaf-loader-go/authority"
	"github.com/minus34/gnaf-loader-go/database"
	"github.com/minus34/gnaf-loader-go/discovery"
	"github.com/minus34/gnaf-loader-go/executor"
	"github.com/minus34/gnaf-loader-go/partition"
	"github.com/minus34/gnaf-loader-go/qa"
	"github.com/minus34/gnaf-loader-go/scripts"
	"github.com/minus34/gnaf-loader-go/settings"
)

// AdminBdy describes one prepared admin boundary table: its id column and
// the column holding the display name.
type AdminBdy struct {
	Table     string
	PIDField  string
	NameField string
}

// AdminBdyList is every prepared boundary table, in build order.
var AdminBdyList = []AdminBdy{
	{"commonwealth_electorates", "ce_pid", "name"},
	{"local_government_areas", "lga_pid", "name"},
	{"local_government_wards", "ward_pid", "name"},
	{"locality_bdys", "locality_pid", "locality_name"},
	{"state_bdys", "state_pid", "state_name"},
	{"state_lower_house_electorates", "sed_pid", "name"},
	{"state_upper_house_electorates", "led_pid", "name"},
}

// tagBdyList is the subset of boundaries addresses get tagged with.
// Locality, postcode and state already sit on every address row.
var tagBdyList = []AdminBdy{
	{"commonwealth_electorates", "ce_pid", "name"},
	{"local_government_areas", "lga_pid", "name"},
	{"local_government_wards", "ward_pid", "name"},
	{"state_lower_house_electorates", "sed_pid", "name"},
	{"state_upper_house_electorates", "led_pid", "name"},
}

// Loader runs the pipeline. All collaborators are injected so the parts
// can be exercised against fakes.
type Loader struct {
	cfg      settings.Config
	db       database.DB
	feats    database.Features
	importer executor.ShapefileImporter
}

func New(cfg settings.Config, db database.DB, feats database.Features, importer executor.ShapefileImporter) *Loader {
	return &Loader{cfg: cfg, db: db, feats: feats, importer: importer}
}

// Run executes the whole load. The first part to fail stops the run;
// everything already committed stays in place for a post-mortem.
func (l *Loader) Run(ctx context.Context) error {
	parts := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Create schemas", l.createSchemas},
		{"Load raw GNAF", l.loadRawGnaf},
		{"Load admin boundaries", l.loadAdminBdys},
		{"Create reference tables", l.createReferenceTables},
		{"Boundary tag addresses", l.boundaryTag},
		{"Get row counts", l.runQA},
	}

	for i, part := range parts {
		start := time.Now()
		log.Infof("Part %d of %d : %s", i+1, len(parts), part.name)

		if err := part.fn(ctx); err != nil {
			return errors.Wrapf(err, "Part %d of %d (%s) failed", i+1, len(parts), part.name)
		}

		log.Infof("Part %d of %d : %s took %v", i+1, len(parts), part.name, elapsed(start))
	}

	return nil
}

// Part 1: output schemas, owned by the configured user. The public schema
// always exists and is never owned by us.
func (l *Loader) createSchemas(ctx context.Context) error {
	for _, schema := range []string{
		l.cfg.RawGnafSchema, l.cfg.RawAdminBdysSchema, l.cfg.AdminBdysSchema, l.cfg.GnafSchema,
	} {
		if schema == "public" {
			continue
		}
		_, err := l.db.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s AUTHORIZATION %s", schema, l.cfg.PGUser))
		if err != nil {
			return errors.Wrapf(err, "unable to create schema %s", schema)
		}
	}
	return nil
}

// Part 2: COPY the GNAF PSV files into the raw tables.
func (l *Loader) loadRawGnaf(ctx context.Context) error {
	const steps = 7

	start := time.Now()
	if l.cfg.VacuumDB {
		if _, err := l.db.Exec(ctx, "VACUUM"); err != nil {
			return errors.Wrap(err, "pre-load vacuum failed")
		}
	}
	if _, err := l.db.Exec(ctx, scripts.SetSearchPath(scripts.DropRawGnafTables, l.cfg.RawGnafSchema)); err != nil {
		return errors.Wrap(err, "unable to drop the raw GNAF tables")
	}
	step(start, 1, steps, "drop existing GNAF tables")

	start = time.Now()
	create := scripts.SetSearchPath(scripts.CreateRawGnafTables, l.cfg.RawGnafSchema)
	if l.cfg.UnloggedTables {
		create = scripts.Unlogged(create)
	}
	if _, err := l.db.Exec(ctx, create); err != nil {
		return errors.Wrap(err, "unable to create the raw GNAF tables")
	}
	step(start, 2, steps, "create tables")

	start = time.Now()
	var copies []string
	for _, prefix := range append([]string{"authority_code"}, l.cfg.StatesToLoad...) {
		stmts, err := discovery.GnafLoadItems(l.cfg.GnafDir, l.cfg.GnafServerDir, l.cfg.RawGnafSchema, prefix)
		if err != nil {
			return errors.Wrapf(err, "unable to scan %s", l.cfg.GnafDir)
		}
		copies = append(copies, stmts...)
	}
	if len(copies) == 0 {
		return errors.Errorf("no raw GNAF PSV files found in %s\nACTION: point gnaf-tables-path at the unzipped GNAF release",
			l.cfg.GnafDir)
	}
	batch, err := l.runBatch(ctx, copies)
	if err != nil {
		return err
	}
	warnIfAny(batch, "raw GNAF load")
	step(start, 3, steps, fmt.Sprintf("load raw GNAF tables (%d files)", len(copies)))

	start = time.Now()
	fix, err := l.prep(scripts.FixMissingGeocodes, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, fix); err != nil {
		return errors.Wrap(err, "unable to fix missing geocodes")
	}
	if err := authority.Clean(ctx, l.db, l.cfg.RawGnafSchema, false); err != nil {
		return err
	}
	step(start, 4, steps, "fix missing geocodes and clean authority tables")

	start = time.Now()
	indexes, err := l.prep(scripts.CreateRawGnafIndexes, nil)
	if err != nil {
		return err
	}
	batch, err = l.runBatch(ctx, scripts.SplitLines(indexes))
	if err != nil {
		return err
	}
	warnIfAny(batch, "raw GNAF index")
	step(start, 5, steps, "index tables")

	start = time.Now()
	if l.cfg.PrimaryForeignKeys {
		// data defects in a release shouldn't stop a load, so key failures
		// are warnings. Primary keys go in before the keys that reference
		// them.
		for _, keys := range []string{scripts.RawGnafPrimaryKeys, scripts.RawGnafForeignKeys} {
			sql, err := l.prep(keys, nil)
			if err != nil {
				return err
			}
			batch, err = l.runBatch(ctx, scripts.SplitLines(sql))
			if err != nil {
				return err
			}
			if batch.Failed() > 0 {
				log.Warnf("\t\t- %d of %d keys couldn't be created", batch.Failed(), len(batch.Results))
			}
		}
		step(start, 6, steps, "create primary & foreign keys")
	} else {
		log.Infof("\t- Step 6 of %d : primary & foreign keys not created", steps)
	}

	start = time.Now()
	if err := l.analyseSchema(ctx, l.cfg.RawGnafSchema); err != nil {
		return err
	}
	step(start, 7, steps, "analyse tables")

	return nil
}

// Part 3: import the admin boundary shapefiles and build the prepared
// boundary tables from them.
func (l *Loader) loadAdminBdys(ctx context.Context) error {
	const steps = 6

	start := time.Now()
	drop, err := l.prep(scripts.DropAdminBdyViews, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, drop); err != nil {
		return errors.Wrap(err, "unable to drop the admin boundary views")
	}
	step(start, 1, steps, "drop existing boundary views")

	start = time.Now()
	// the authority code DBFs ship alongside the per-state files
	prefixes := append(append([]string{}, l.cfg.StatesToLoad...), "authority_code")
	creates, appends, err := discovery.ShapefileLoadItems(l.cfg.AdminBdysDir, prefixes, l.cfg.RawAdminBdysSchema)
	if err != nil {
		return errors.Wrapf(err, "unable to scan %s", l.cfg.AdminBdysDir)
	}
	if len(creates) == 0 {
		return errors.Errorf("no admin boundary files found in %s\nACTION: point admin-bdys-path at the unzipped admin boundaries release",
			l.cfg.AdminBdysDir)
	}
	batch, err := executor.RunShapefileCreates(ctx, l.importer, creates, l.cfg.Workers(len(creates)))
	if err != nil {
		return err
	}
	warnIfAny(batch, "boundary import")
	step(start, 2, steps, fmt.Sprintf("import new boundary tables (%d files)", len(creates)))

	start = time.Now()
	batch = executor.RunShapefileAppends(ctx, l.importer, appends)
	warnIfAny(batch, "boundary append")
	step(start, 3, steps, fmt.Sprintf("append remaining boundary files (%d files)", len(appends)))

	start = time.Now()
	if err := authority.Clean(ctx, l.db, l.cfg.RawAdminBdysSchema, true); err != nil {
		return err
	}
	step(start, 4, steps, "clean authority tables")

	start = time.Now()
	prep, err := l.prep(scripts.PrepAdminBdys, nil)
	if err != nil {
		return err
	}
	batch, err = l.runBatch(ctx, scripts.SplitGroups(prep))
	if err != nil {
		return err
	}
	warnIfAny(batch, "prepared boundary table")
	if !settings.Contains(l.cfg.StatesToLoad, "SA") {
		outback, err := l.prep(scripts.RemoveOutbackBdy, nil)
		if err != nil {
			return err
		}
		if _, err := l.db.Exec(ctx, outback); err != nil {
			return err
		}
	}
	step(start, 5, steps, "create prepared boundary tables")

	start = time.Now()
	if l.feats.SubdivideSupported {
		var stmts []string
		for _, bdy := range AdminBdyList {
			sql, err := l.analysisSQL(bdy)
			if err != nil {
				return err
			}
			stmts = append(stmts, sql)
		}
		batch, err = l.runBatch(ctx, stmts)
		if err != nil {
			return err
		}
		warnIfAny(batch, "boundary analysis table")
	} else {
		log.Warnf("\t\t- PostGIS %s lacks ST_Subdivide - analysis tables not created, boundary tagging will be slow",
			l.feats.PostGISVersion)
	}
	if err := l.analyseSchema(ctx, l.cfg.RawAdminBdysSchema); err != nil {
		return err
	}
	step(start, 6, steps, "create boundary analysis tables")

	return nil
}

// Part 4: flatten the raw tables into the locality, street and address
// reference tables.
func (l *Loader) createReferenceTables(ctx context.Context) error {
	const steps = 14

	singles := []struct {
		n    int
		desc string
		sql  string
	}{
		{1, "create reference tables", scripts.CreateReferenceTables},
		{2, "populate localities", scripts.PopulateLocalities},
		{3, "populate locality aliases", scripts.PopulateLocalityAliases},
		{4, "populate locality neighbours", scripts.PopulateLocalityNeighbours},
		{5, "populate streets", scripts.PopulateStreets},
		{6, "populate street aliases", scripts.PopulateStreetAliases},
	}
	for _, s := range singles {
		start := time.Now()
		sql, err := l.prep(s.sql, nil)
		if err != nil {
			return err
		}
		if _, err := l.db.Exec(ctx, sql); err != nil {
			return errors.Wrapf(err, "unable to %s", s.desc)
		}
		step(start, s.n, steps, s.desc)
	}

	start := time.Now()
	temp, err := l.prep(scripts.CreateTempAddresses, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, temp); err != nil {
		return err
	}
	populate, err := l.prep(scripts.PopulateAddresses1, nil)
	if err != nil {
		return err
	}
	if err := l.runPartitioned(ctx, populate, l.cfg.GnafSchema, "streets", "str"); err != nil {
		return err
	}
	// fresh stats for the temp table before the heavy joins against it
	if _, err := l.db.Exec(ctx, fmt.Sprintf("ANALYZE %s.temp_addresses", l.cfg.GnafSchema)); err != nil {
		return err
	}
	step(start, 7, steps, "populate addresses")

	start = time.Now()
	lookup, err := l.prep(scripts.PopulateAddressAliasLookup, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, lookup); err != nil {
		return errors.Wrap(err, "unable to populate the address alias lookup")
	}
	step(start, 8, steps, "populate address alias lookup")

	start = time.Now()
	secondary, err := l.prep(scripts.PopulateAddressSecondaryLookup, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, secondary); err != nil {
		return errors.Wrap(err, "unable to populate the address secondary lookup")
	}
	if _, err := l.db.Exec(ctx, fmt.Sprintf("VACUUM ANALYZE %s.address_secondary_lookup", l.cfg.GnafSchema)); err != nil {
		return err
	}
	step(start, 9, steps, "populate address secondary lookup")

	start = time.Now()
	melbourne, err := l.prep(scripts.SplitMelbourne, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, melbourne); err != nil {
		return errors.Wrap(err, "unable to split Melbourne")
	}
	step(start, 10, steps, "split Melbourne")

	start = time.Now()
	finalise, err := l.prep(scripts.FinaliseLocalities, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, finalise); err != nil {
		return errors.Wrap(err, "unable to finalise localities")
	}
	step(start, 11, steps, "finalise localities")

	start = time.Now()
	principals, err := l.prep(scripts.PopulateAddresses2, nil)
	if err != nil {
		return err
	}
	if err := l.runPartitioned(ctx, principals, l.cfg.GnafSchema, "localities", "loc"); err != nil {
		return err
	}
	aliases, err := l.prep(scripts.PopulateAddressAliases, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, aliases); err != nil {
		return errors.Wrap(err, "unable to populate address aliases")
	}
	dropTemp, err := l.prep(scripts.DropTempAddresses, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, dropTemp); err != nil {
		return err
	}
	step(start, 12, steps, "finalise addresses")

	start = time.Now()
	postcodes, err := l.prep(scripts.CreatePostcodeBdys, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, postcodes); err != nil {
		return err
	}
	derive, err := l.prep(scripts.DerivedPostcodeBdys, nil)
	if err != nil {
		return err
	}
	batch, err := l.runBatch(ctx, partition.SplitByState(derive, l.cfg.StatesToLoad))
	if err != nil {
		return err
	}
	warnIfAny(batch, "postcode boundary")
	if l.feats.SubdivideSupported {
		analysis, err := l.prep(scripts.PostcodeAnalysisTable, nil)
		if err != nil {
			return err
		}
		if _, err := l.db.Exec(ctx, analysis); err != nil {
			return err
		}
	}
	step(start, 13, steps, "create postcode boundaries")

	start = time.Now()
	indexes, err := l.prep(scripts.CreateReferenceIndexes, nil)
	if err != nil {
		return err
	}
	batch, err = l.runBatch(ctx, scripts.SplitLines(indexes))
	if err != nil {
		return err
	}
	warnIfAny(batch, "reference index")
	step(start, 14, steps, "index reference tables")

	return nil
}

// Part 5: point-in-polygon tag every address with its electoral and local
// government boundaries.
func (l *Loader) boundaryTag(ctx context.Context) error {
	const steps = 7

	if l.cfg.NoBoundaryTag {
		log.Warn("\t- boundary tagging skipped (no-boundary-tag set)")
		return nil
	}

	start := time.Now()
	var stmts []string
	for _, bdy := range tagBdyList {
		sql, err := l.prepBdy(scripts.BdyTagTempTableTemplate, bdy)
		if err != nil {
			return err
		}
		stmts = append(stmts, sql)
	}
	batch, err := l.runBatch(ctx, stmts)
	if err != nil {
		return err
	}
	warnIfAny(batch, "tag staging table")
	step(start, 1, steps, "create tag staging tables")

	start = time.Now()
	for _, bdy := range tagBdyList {
		sql, err := l.prepBdy(scripts.BdyTagTemplate, bdy)
		if err != nil {
			return err
		}
		if err := l.runPartitioned(ctx, sql, l.cfg.GnafSchema, "address_principals", "pnts"); err != nil {
			return errors.Wrapf(err, "unable to tag addresses with %s", bdy.Table)
		}
	}
	step(start, 2, steps, "tag addresses")

	start = time.Now()
	stmts = stmts[:0]
	for _, bdy := range tagBdyList {
		sql, err := l.prepBdy(scripts.BdyTagCleanTemplate, bdy)
		if err != nil {
			return err
		}
		stmts = append(stmts, sql)
	}
	batch, err = l.runBatch(ctx, stmts)
	if err != nil {
		return err
	}
	warnIfAny(batch, "tag cleanup")
	step(start, 3, steps, "remove cross-border tags and index")

	start = time.Now()
	if _, err := l.db.Exec(ctx, l.createTagTableSQL()); err != nil {
		return errors.Wrap(err, "unable to create the principal boundary table")
	}
	if err := l.runPartitioned(ctx, l.tagInsertSQL(), l.cfg.GnafSchema, "address_principals", "pnts"); err != nil {
		return err
	}
	step(start, 4, steps, "populate principal boundary table")

	start = time.Now()
	_, err = l.db.Exec(ctx, fmt.Sprintf(
		`CREATE INDEX address_principal_admin_boundaries_gnaf_pid_idx ON %[1]s.address_principal_admin_boundaries USING btree (gnaf_pid);
		 ANALYZE %[1]s.address_principal_admin_boundaries`, l.cfg.GnafSchema))
	if err != nil {
		return err
	}
	var duplicates int64
	err = l.db.QueryRow(ctx, fmt.Sprintf(
		`SELECT count(*) FROM (
		     SELECT gnaf_pid FROM %s.address_principal_admin_boundaries GROUP BY gnaf_pid HAVING count(*) > 1
		 ) AS dupes`, l.cfg.GnafSchema)).Scan(&duplicates)
	if err != nil {
		return err
	}
	if duplicates > 0 {
		log.Warnf("\t\t- %d addresses have duplicate boundary tags - check boundary overlaps", duplicates)
	}
	step(start, 5, steps, "index principal boundary table")

	start = time.Now()
	aliases, err := l.prep(scripts.AliasBdyTags, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, aliases); err != nil {
		return errors.Wrap(err, "unable to create the alias boundary table")
	}
	step(start, 6, steps, "populate alias boundary table")

	start = time.Now()
	view, err := l.prep(scripts.BdyTagView, nil)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, view); err != nil {
		return errors.Wrap(err, "unable to create the boundary view")
	}
	stmts = stmts[:0]
	for _, bdy := range tagBdyList {
		stmts = append(stmts, fmt.Sprintf("DROP TABLE IF EXISTS %s.temp_%s_tags CASCADE",
			l.cfg.GnafSchema, l.tagTableName(bdy)))
	}
	if _, err := l.runBatch(ctx, stmts); err != nil {
		return err
	}
	step(start, 7, steps, "create boundary view and clean up")

	return nil
}

// Part 6: row counts and the comparison against the previous release.
// QA never fails a run that got this far; problems are logged and the data
// is left in place to inspect.
func (l *Loader) runQA(ctx context.Context) error {
	schemas := []struct {
		schema   string
		previous string
	}{
		{l.cfg.GnafSchema, l.cfg.PreviousGnafSchema},
		{l.cfg.AdminBdysSchema, l.cfg.PreviousAdminBdysSchema},
	}

	for i, s := range schemas {
		start := time.Now()
		if err := qa.BuildCounts(ctx, l.db, s.schema, l.cfg.PGUser); err != nil {
			log.Warnf("couldn't build row counts for %s : %v", s.schema, err)
			continue
		}
		if err := qa.CompareWithPrevious(ctx, l.db, s.schema, s.previous, l.cfg.PGUser); err != nil {
			log.Warnf("couldn't compare %s with the previous release : %v", s.schema, err)
		}
		step(start, i+1, 3, fmt.Sprintf("row counts for %s", s.schema))
	}

	start := time.Now()
	if l.cfg.QASnapshotPath != "" {
		err := qa.WriteSnapshot(ctx, l.db, []string{l.cfg.GnafSchema, l.cfg.AdminBdysSchema}, l.cfg.QASnapshotPath)
		if err != nil {
			log.Warnf("couldn't write the QA snapshot : %v", err)
		} else {
			step(start, 3, 3, fmt.Sprintf("QA snapshot written to %s", l.cfg.QASnapshotPath))
		}
	}

	return nil
}

// tagTableName picks the subdivided analysis table when the server supports
// it; tagging against the raw multipolygons is an order of magnitude slower.
func (l *Loader) tagTableName(bdy AdminBdy) string {
	if l.feats.SubdivideSupported {
		return bdy.Table + "_analysis"
	}
	return bdy.Table
}

// createTagTableSQL builds the principal boundary table with one pid/name
// column pair per tagged boundary type.
func (l *Loader) createTagTableSQL() string {
	var cols strings.Builder
	for _, bdy := range tagBdyList {
		p := tagPrefix(bdy.PIDField)
		fmt.Fprintf(&cols, ",\n    %s_pid text,\n    %s_name text", p, p)
	}

	return fmt.Sprintf(`DROP TABLE IF EXISTS %[1]s.address_principal_admin_boundaries CASCADE;
CREATE TABLE %[1]s.address_principal_admin_boundaries (
    gid serial NOT NULL,
    gnaf_pid text NOT NULL,
    locality_pid text NOT NULL,
    locality_name text NOT NULL,
    postcode text,
    state text NOT NULL%s
)`, l.cfg.GnafSchema, cols.String())
}

// tagInsertSQL joins every staging table onto the principal addresses in
// one pass. Outer joins: an address outside all boundaries of a type still
// gets a row, with nulls.
func (l *Loader) tagInsertSQL() string {
	var cols, selects, joins strings.Builder
	for _, bdy := range tagBdyList {
		p := tagPrefix(bdy.PIDField)
		fmt.Fprintf(&cols, ", %s_pid, %s_name", p, p)
		fmt.Fprintf(&selects, ",\n       %s.bdy_pid,\n       %s.bdy_name", p, p)
		fmt.Fprintf(&joins, "\nLEFT OUTER JOIN %s.temp_%s_tags AS %s ON pnts.gnaf_pid = %s.gnaf_pid",
			l.cfg.GnafSchema, l.tagTableName(bdy), p, p)
	}

	return fmt.Sprintf(`INSERT INTO %[1]s.address_principal_admin_boundaries
    (gnaf_pid, locality_pid, locality_name, postcode, state%s)
SELECT pnts.gnaf_pid,
       pnts.locality_pid,
       pnts.locality_name,
       pnts.postcode,
       pnts.state%s
FROM %[1]s.address_principals AS pnts%[4]s`, l.cfg.GnafSchema, cols.String(), selects.String(), joins.String())
}

func tagPrefix(pidField string) string {
	return strings.TrimSuffix(pidField, "_pid")
}

func (l *Loader) params() scripts.Params {
	return scripts.Params{
		"RAW_GNAF_SCHEMA":  l.cfg.RawGnafSchema,
		"RAW_ADMIN_SCHEMA": l.cfg.RawAdminBdysSchema,
		"ADMIN_SCHEMA":     l.cfg.AdminBdysSchema,
		"GNAF_SCHEMA":      l.cfg.GnafSchema,
		"PG_USER":          l.cfg.PGUser,
	}
}

func (l *Loader) prep(sql string, extra scripts.Params) (string, error) {
	params := l.params()
	for name, value := range extra {
		params[name] = value
	}
	return scripts.Prep(sql, params)
}

// analysisSQL picks the subdivide script for one boundary table. Locality
// boundaries get their own script so the postcode column survives into the
// analysis table.
func (l *Loader) analysisSQL(bdy AdminBdy) (string, error) {
	if bdy.Table == "locality_bdys" {
		return l.prep(scripts.LocalityAnalysisTable, nil)
	}
	return l.prep(scripts.AnalysisTableTemplate, scripts.Params{
		"TABLE":      bdy.Table,
		"PID_FIELD":  bdy.PIDField,
		"NAME_FIELD": bdy.NameField,
	})
}

func (l *Loader) prepBdy(template string, bdy AdminBdy) (string, error) {
	return l.prep(template, scripts.Params{
		"TABLE":     l.tagTableName(bdy),
		"PID_FIELD": bdy.PIDField,
	})
}

func (l *Loader) runBatch(ctx context.Context, stmts []string) (*executor.BatchResult, error) {
	return executor.RunSQL(ctx, l.db, stmts, l.cfg.Workers(len(stmts)))
}

// runPartitioned splits a statement over disjoint id ranges of the driving
// table and runs the pieces concurrently; small tables just run the
// statement as-is.
func (l *Loader) runPartitioned(ctx context.Context, sql, schema, table, alias string) error {
	stmts, err := partition.SplitByID(ctx, l.db, sql, schema, table, alias, "gid", l.cfg.Workers(0))
	if err != nil {
		return err
	}
	if stmts == nil {
		stmts = []string{sql}
	}

	batch, err := l.runBatch(ctx, stmts)
	if err != nil {
		return err
	}
	warnIfAny(batch, fmt.Sprintf("%s.%s", schema, table))
	return nil
}

// analyseSchema runs ANALYZE on every table the planner has no stats for
// yet. COPY and shp2pgsql leave stats behind, so this usually only touches
// a handful of tables.
func (l *Loader) analyseSchema(ctx context.Context, schema string) error {
	rows, err := l.db.Query(ctx,
		`SELECT nsp.nspname, cls.relname
		 FROM pg_class AS cls
		 INNER JOIN pg_namespace AS nsp ON cls.relnamespace = nsp.oid
		 WHERE nsp.nspname = $1 AND cls.relkind = 'r' AND cls.reltuples = 0`, schema)
	if err != nil {
		return errors.Wrapf(err, "unable to find unanalysed tables in %s", schema)
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var nspname, relname string
		if err := rows.Scan(&nspname, &relname); err != nil {
			return err
		}
		stmts = append(stmts, fmt.Sprintf("VACUUM ANALYZE %s.%s", nspname, relname))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// stale stats aren't worth failing a load over
	_, err = l.runBatch(ctx, stmts)
	return err
}

// One failed item in a parallel batch is item-local: the executor already
// logged it, its siblings committed, and the load carries on degraded. The
// fatal paths are the empty-input checks and the single-statement steps.
func warnIfAny(batch *executor.BatchResult, what string) {
	if batch.Failed() > 0 {
		log.Warnf("\t\t- %d of %d %s statements failed", batch.Failed(), len(batch.Results), what)
	}
}

func step(start time.Time, n, total int, desc string) {
	log.Infof("\t- Step %d of %d : %s : %v", n, total, desc, elapsed(start))
}

func elapsed(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
