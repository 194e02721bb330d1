package scripts

// Boundary tagging scripts. %TABLE% is the boundary table (possibly the
// _analysis version), %PID_FIELD% its id column.

// Per-boundary staging table for tag results.
var BdyTagTempTableTemplate = `
DROP TABLE IF EXISTS %GNAF_SCHEMA%.temp_%TABLE%_tags CASCADE;
CREATE UNLOGGED TABLE %GNAF_SCHEMA%.temp_%TABLE%_tags (
    gnaf_pid text,
    gnaf_state text,
    bdy_pid text,
    bdy_name text,
    bdy_state text
);
`

// Point-in-polygon tag of every principal address against one boundary
// type. Runs partitioned by bdys.gid range.
var BdyTagTemplate = `
INSERT INTO %GNAF_SCHEMA%.temp_%TABLE%_tags
SELECT pnts.gnaf_pid,
       pnts.state,
       bdys.%PID_FIELD%,
       bdys.name,
       bdys.state
FROM %GNAF_SCHEMA%.address_principals AS pnts
INNER JOIN %ADMIN_SCHEMA%.%TABLE% AS bdys ON ST_Within(pnts.geom, bdys.geom)
`

// Addresses on a state border can match a neighbouring state's boundary by
// a sliver; those matches are wrong by definition (OT excepted).
var BdyTagCleanTemplate = `
DELETE FROM %GNAF_SCHEMA%.temp_%TABLE%_tags WHERE gnaf_state <> bdy_state AND gnaf_state <> 'OT';
CREATE INDEX temp_%TABLE%_tags_gnaf_pid_idx ON %GNAF_SCHEMA%.temp_%TABLE%_tags USING btree (gnaf_pid);
ANALYZE %GNAF_SCHEMA%.temp_%TABLE%_tags;
`

var AliasBdyTags = `
DROP TABLE IF EXISTS %GNAF_SCHEMA%.address_alias_admin_boundaries CASCADE;
CREATE TABLE %GNAF_SCHEMA%.address_alias_admin_boundaries AS
SELECT als.gid,
       als.gnaf_pid,
       als.locality_pid,
       als.locality_name,
       als.postcode,
       als.state,
       tags.ce_pid, tags.ce_name,
       tags.lga_pid, tags.lga_name,
       tags.ward_pid, tags.ward_name,
       tags.sed_pid, tags.sed_name,
       tags.led_pid, tags.led_name
FROM %GNAF_SCHEMA%.address_aliases AS als
INNER JOIN %GNAF_SCHEMA%.address_alias_lookup AS lkp ON als.gnaf_pid = lkp.alias_pid
INNER JOIN %GNAF_SCHEMA%.address_principal_admin_boundaries AS tags ON lkp.principal_pid = tags.gnaf_pid;
CREATE INDEX address_alias_admin_boundaries_gnaf_pid_idx ON %GNAF_SCHEMA%.address_alias_admin_boundaries USING btree (gnaf_pid);
ANALYZE %GNAF_SCHEMA%.address_alias_admin_boundaries;
`

var BdyTagView = `
DROP VIEW IF EXISTS %GNAF_SCHEMA%.address_admin_boundaries CASCADE;
CREATE VIEW %GNAF_SCHEMA%.address_admin_boundaries AS
SELECT * FROM %GNAF_SCHEMA%.address_principal_admin_boundaries
UNION ALL
SELECT * FROM %GNAF_SCHEMA%.address_alias_admin_boundaries;
`
