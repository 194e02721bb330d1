package scripts

// Admin boundary scripts. The raw aus_* tables are created by shp2pgsql, so
// these only cover the views, the prepared tables and the analysis tables.

var DropAdminBdyViews = `
DROP VIEW IF EXISTS %ADMIN_SCHEMA%.address_admin_boundaries CASCADE;
`

// Each group (separated by the -- # -- marker) builds one prepared boundary
// table and is independent of its siblings, so groups run in parallel.
var PrepAdminBdys = `
DROP TABLE IF EXISTS %ADMIN_SCHEMA%.locality_bdys CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.locality_bdys AS
SELECT bdy.gid,
       bdy.loc_pid AS locality_pid,
       bdy.name AS locality_name,
       loc.primary_postcode AS postcode,
       bdy.state,
       ST_Multi(ST_Union(ST_MakeValid(bdy.geom))) AS geom
FROM %RAW_ADMIN_SCHEMA%.aus_locality AS bdy
INNER JOIN %RAW_ADMIN_SCHEMA%.aus_locality_class_aut AS aut ON bdy.loccl_code = aut.code
LEFT OUTER JOIN %RAW_GNAF_SCHEMA%.locality AS loc ON bdy.loc_pid = loc.locality_pid
GROUP BY bdy.gid, bdy.loc_pid, bdy.name, loc.primary_postcode, bdy.state;
ALTER TABLE %ADMIN_SCHEMA%.locality_bdys ADD CONSTRAINT locality_bdys_pk PRIMARY KEY (locality_pid);
CREATE INDEX locality_bdys_geom_idx ON %ADMIN_SCHEMA%.locality_bdys USING gist (geom);

-- # --

DROP TABLE IF EXISTS %ADMIN_SCHEMA%.state_bdys CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.state_bdys AS
SELECT bdy.gid,
       bdy.state_pid,
       aut.name AS state_name,
       bdy.state,
       ST_Multi(ST_Union(ST_MakeValid(bdy.geom))) AS geom
FROM %RAW_ADMIN_SCHEMA%.aus_state AS bdy
INNER JOIN %RAW_ADMIN_SCHEMA%.aus_state_aut AS aut ON bdy.state_pid = aut.code
GROUP BY bdy.gid, bdy.state_pid, aut.name, bdy.state;
ALTER TABLE %ADMIN_SCHEMA%.state_bdys ADD CONSTRAINT state_bdys_pk PRIMARY KEY (state_pid);
CREATE INDEX state_bdys_geom_idx ON %ADMIN_SCHEMA%.state_bdys USING gist (geom);

-- # --

DROP TABLE IF EXISTS %ADMIN_SCHEMA%.commonwealth_electorates CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.commonwealth_electorates AS
SELECT bdy.gid,
       bdy.ce_pid,
       bdy.name,
       bdy.state,
       ST_Multi(ST_Union(ST_MakeValid(bdy.geom))) AS geom
FROM %RAW_ADMIN_SCHEMA%.aus_comm_electoral AS bdy
GROUP BY bdy.gid, bdy.ce_pid, bdy.name, bdy.state;
ALTER TABLE %ADMIN_SCHEMA%.commonwealth_electorates ADD CONSTRAINT commonwealth_electorates_pk PRIMARY KEY (ce_pid);
CREATE INDEX commonwealth_electorates_geom_idx ON %ADMIN_SCHEMA%.commonwealth_electorates USING gist (geom);

-- # --

DROP TABLE IF EXISTS %ADMIN_SCHEMA%.local_government_areas CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.local_government_areas AS
SELECT bdy.gid,
       bdy.lga_pid,
       bdy.name,
       bdy.state,
       ST_Multi(ST_Union(ST_MakeValid(bdy.geom))) AS geom
FROM %RAW_ADMIN_SCHEMA%.aus_lga AS bdy
GROUP BY bdy.gid, bdy.lga_pid, bdy.name, bdy.state;
ALTER TABLE %ADMIN_SCHEMA%.local_government_areas ADD CONSTRAINT local_government_areas_pk PRIMARY KEY (lga_pid);
CREATE INDEX local_government_areas_geom_idx ON %ADMIN_SCHEMA%.local_government_areas USING gist (geom);

-- # --

DROP TABLE IF EXISTS %ADMIN_SCHEMA%.local_government_wards CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.local_government_wards AS
SELECT bdy.gid,
       bdy.ward_pid,
       bdy.name,
       bdy.state,
       ST_Multi(ST_Union(ST_MakeValid(bdy.geom))) AS geom
FROM %RAW_ADMIN_SCHEMA%.aus_ward AS bdy
GROUP BY bdy.gid, bdy.ward_pid, bdy.name, bdy.state;
ALTER TABLE %ADMIN_SCHEMA%.local_government_wards ADD CONSTRAINT local_government_wards_pk PRIMARY KEY (ward_pid);
CREATE INDEX local_government_wards_geom_idx ON %ADMIN_SCHEMA%.local_government_wards USING gist (geom);

-- # --

DROP TABLE IF EXISTS %ADMIN_SCHEMA%.state_lower_house_electorates CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.state_lower_house_electorates AS
SELECT bdy.gid,
       bdy.sed_pid,
       bdy.name,
       bdy.state,
       ST_Multi(ST_Union(ST_MakeValid(bdy.geom))) AS geom
FROM %RAW_ADMIN_SCHEMA%.aus_state_electoral AS bdy
WHERE bdy.legislature = 'LOWER'
GROUP BY bdy.gid, bdy.sed_pid, bdy.name, bdy.state;
ALTER TABLE %ADMIN_SCHEMA%.state_lower_house_electorates ADD CONSTRAINT state_lower_house_electorates_pk PRIMARY KEY (sed_pid);
CREATE INDEX state_lower_house_electorates_geom_idx ON %ADMIN_SCHEMA%.state_lower_house_electorates USING gist (geom);

-- # --

DROP TABLE IF EXISTS %ADMIN_SCHEMA%.state_upper_house_electorates CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.state_upper_house_electorates AS
SELECT bdy.gid,
       bdy.led_pid,
       bdy.name,
       bdy.state,
       ST_Multi(ST_Union(ST_MakeValid(bdy.geom))) AS geom
FROM %RAW_ADMIN_SCHEMA%.aus_state_electoral AS bdy
WHERE bdy.legislature = 'UPPER'
GROUP BY bdy.gid, bdy.led_pid, bdy.name, bdy.state;
ALTER TABLE %ADMIN_SCHEMA%.state_upper_house_electorates ADD CONSTRAINT state_upper_house_electorates_pk PRIMARY KEY (led_pid);
CREATE INDEX state_upper_house_electorates_geom_idx ON %ADMIN_SCHEMA%.state_upper_house_electorates USING gist (geom);
`

// Custom boundary covering remote SA communities; only wanted when South
// Australia is in the load.
var RemoveOutbackBdy = `
DELETE FROM %ADMIN_SCHEMA%.locality_bdys WHERE locality_pid = 'SA999999';
ANALYZE %ADMIN_SCHEMA%.locality_bdys;
`

// Subdivided copies of each boundary table for fast point-in-polygon work.
// Requires ST_Subdivide (PostGIS 2.2+).
var AnalysisTableTemplate = `
DROP TABLE IF EXISTS %ADMIN_SCHEMA%.%TABLE%_analysis CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.%TABLE%_analysis AS
SELECT %PID_FIELD%,
       name,
       state,
       ST_Subdivide(geom, 512) AS geom
FROM (
    SELECT %PID_FIELD%,
           %NAME_FIELD% AS name,
           state,
           geom
    FROM %ADMIN_SCHEMA%.%TABLE%
) AS bdys;
CREATE INDEX %TABLE%_analysis_geom_idx ON %ADMIN_SCHEMA%.%TABLE%_analysis USING gist (geom);
ALTER TABLE %ADMIN_SCHEMA%.%TABLE%_analysis CLUSTER ON %TABLE%_analysis_geom_idx;
ANALYZE %ADMIN_SCHEMA%.%TABLE%_analysis;
`

// The locality analysis table is the one that also carries the postcode,
// so postcode point-in-polygon work can use the subdivided geometries too.
var LocalityAnalysisTable = `
DROP TABLE IF EXISTS %ADMIN_SCHEMA%.locality_bdys_analysis CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.locality_bdys_analysis AS
SELECT locality_pid,
       name,
       postcode,
       state,
       ST_Subdivide(geom, 512) AS geom
FROM (
    SELECT locality_pid,
           locality_name AS name,
           postcode,
           state,
           geom
    FROM %ADMIN_SCHEMA%.locality_bdys
) AS bdys;
CREATE INDEX locality_bdys_analysis_geom_idx ON %ADMIN_SCHEMA%.locality_bdys_analysis USING gist (geom);
ALTER TABLE %ADMIN_SCHEMA%.locality_bdys_analysis CLUSTER ON locality_bdys_analysis_geom_idx;
ANALYZE %ADMIN_SCHEMA%.locality_bdys_analysis;
`
