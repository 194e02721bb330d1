package scripts

// Reference table scripts - flatten raw GNAF into usable locality, street
// and address tables. Step numbers match the pipeline's Part 4 sub-steps.

// step 1
var CreateReferenceTables = `
DROP TABLE IF EXISTS %GNAF_SCHEMA%.localities CASCADE;
CREATE TABLE %GNAF_SCHEMA%.localities (
    gid serial NOT NULL,
    locality_pid text NOT NULL,
    locality_name text NOT NULL,
    postcode text,
    state text NOT NULL,
    locality_class text,
    address_count integer NOT NULL DEFAULT 0,
    street_count integer NOT NULL DEFAULT 0
);

DROP TABLE IF EXISTS %GNAF_SCHEMA%.locality_aliases CASCADE;
CREATE TABLE %GNAF_SCHEMA%.locality_aliases (
    gid serial NOT NULL,
    locality_pid text NOT NULL,
    locality_alias_name text NOT NULL,
    postcode text,
    state text NOT NULL
);

DROP TABLE IF EXISTS %GNAF_SCHEMA%.locality_neighbour_lookup CASCADE;
CREATE TABLE %GNAF_SCHEMA%.locality_neighbour_lookup (
    locality_pid text NOT NULL,
    neighbour_locality_pid text NOT NULL
);

DROP TABLE IF EXISTS %GNAF_SCHEMA%.streets CASCADE;
CREATE TABLE %GNAF_SCHEMA%.streets (
    gid serial NOT NULL,
    street_locality_pid text NOT NULL,
    locality_pid text NOT NULL,
    street_name text NOT NULL,
    street_type text,
    street_suffix text,
    full_street_name text,
    locality_name text,
    postcode text,
    state text,
    address_count integer NOT NULL DEFAULT 0
);

DROP TABLE IF EXISTS %GNAF_SCHEMA%.street_aliases CASCADE;
CREATE TABLE %GNAF_SCHEMA%.street_aliases (
    gid serial NOT NULL,
    street_locality_pid text NOT NULL,
    alias_street_name text NOT NULL,
    alias_street_type text,
    alias_street_suffix text
);

DROP TABLE IF EXISTS %GNAF_SCHEMA%.address_principals CASCADE;
CREATE TABLE %GNAF_SCHEMA%.address_principals (
    gid serial NOT NULL,
    gnaf_pid text NOT NULL,
    street_locality_pid text NOT NULL,
    locality_pid text NOT NULL,
    alias_principal character(1) NOT NULL,
    primary_secondary text,
    building_name text,
    lot_number text,
    flat_number text,
    level_number text,
    number_first text,
    number_last text,
    street_name text,
    street_type text,
    street_suffix text,
    address text,
    locality_name text,
    postcode text,
    state text,
    locality_postcode text,
    confidence integer,
    legal_parcel_id text,
    mb_2021_code bigint,
    latitude numeric(10,8),
    longitude numeric(11,8),
    geocode_type text,
    reliability integer,
    geom geometry(Point, 4283)
);

DROP TABLE IF EXISTS %GNAF_SCHEMA%.address_aliases CASCADE;
CREATE TABLE %GNAF_SCHEMA%.address_aliases (LIKE %GNAF_SCHEMA%.address_principals INCLUDING DEFAULTS);

DROP TABLE IF EXISTS %GNAF_SCHEMA%.address_alias_lookup CASCADE;
CREATE TABLE %GNAF_SCHEMA%.address_alias_lookup (
    principal_pid text NOT NULL,
    alias_pid text NOT NULL,
    alias_type text NOT NULL
);

DROP TABLE IF EXISTS %GNAF_SCHEMA%.address_secondary_lookup CASCADE;
CREATE TABLE %GNAF_SCHEMA%.address_secondary_lookup (
    primary_pid text NOT NULL,
    secondary_pid text NOT NULL,
    join_type integer NOT NULL
);
`

// step 2
var PopulateLocalities = `
INSERT INTO %GNAF_SCHEMA%.localities (locality_pid, locality_name, postcode, state, locality_class)
SELECT loc.locality_pid,
       initcap(loc.locality_name),
       loc.primary_postcode,
       ste.state_abbreviation,
       aut.name
FROM %RAW_GNAF_SCHEMA%.locality AS loc
INNER JOIN %RAW_GNAF_SCHEMA%.state AS ste ON loc.state_pid = ste.state_pid
LEFT OUTER JOIN %RAW_GNAF_SCHEMA%.locality_class_aut AS aut ON loc.locality_class_code = aut.code
WHERE loc.date_retired IS NULL;

ANALYZE %GNAF_SCHEMA%.localities;
`

// step 3
var PopulateLocalityAliases = `
INSERT INTO %GNAF_SCHEMA%.locality_aliases (locality_pid, locality_alias_name, postcode, state)
SELECT als.locality_pid,
       initcap(als.name),
       als.postcode,
       ste.state_abbreviation
FROM %RAW_GNAF_SCHEMA%.locality_alias AS als
INNER JOIN %RAW_GNAF_SCHEMA%.locality AS loc ON als.locality_pid = loc.locality_pid
INNER JOIN %RAW_GNAF_SCHEMA%.state AS ste ON loc.state_pid = ste.state_pid
WHERE als.date_retired IS NULL
  AND loc.date_retired IS NULL;

ANALYZE %GNAF_SCHEMA%.locality_aliases;
`

// step 4
var PopulateLocalityNeighbours = `
INSERT INTO %GNAF_SCHEMA%.locality_neighbour_lookup (locality_pid, neighbour_locality_pid)
SELECT DISTINCT locality_pid, neighbour_locality_pid
FROM %RAW_GNAF_SCHEMA%.locality_neighbour
WHERE date_retired IS NULL;

ANALYZE %GNAF_SCHEMA%.locality_neighbour_lookup;
`

// step 5
var PopulateStreets = `
INSERT INTO %GNAF_SCHEMA%.streets
    (street_locality_pid, locality_pid, street_name, street_type, street_suffix,
     full_street_name, locality_name, postcode, state)
SELECT str.street_locality_pid,
       str.locality_pid,
       initcap(str.street_name),
       initcap(typ.name),
       initcap(sfx.name),
       trim(initcap(concat_ws(' ', str.street_name, typ.name, sfx.name))),
       loc.locality_name,
       loc.postcode,
       loc.state
FROM %RAW_GNAF_SCHEMA%.street_locality AS str
INNER JOIN %GNAF_SCHEMA%.localities AS loc ON str.locality_pid = loc.locality_pid
LEFT OUTER JOIN %RAW_GNAF_SCHEMA%.street_type_aut AS typ ON str.street_type_code = typ.code
LEFT OUTER JOIN %RAW_GNAF_SCHEMA%.street_suffix_aut AS sfx ON str.street_suffix_code = sfx.code
WHERE str.date_retired IS NULL;

ANALYZE %GNAF_SCHEMA%.streets;
`

// step 6
var PopulateStreetAliases = `
INSERT INTO %GNAF_SCHEMA%.street_aliases
    (street_locality_pid, alias_street_name, alias_street_type, alias_street_suffix)
SELECT als.street_locality_pid,
       initcap(als.street_name),
       initcap(typ.name),
       initcap(sfx.name)
FROM %RAW_GNAF_SCHEMA%.street_locality_alias AS als
LEFT OUTER JOIN %RAW_GNAF_SCHEMA%.street_type_aut AS typ ON als.street_type_code = typ.code
LEFT OUTER JOIN %RAW_GNAF_SCHEMA%.street_suffix_aut AS sfx ON als.street_suffix_code = sfx.code
WHERE als.date_retired IS NULL;

ANALYZE %GNAF_SCHEMA%.street_aliases;
`

// step 7 - the big one. Runs partitioned by street gid range; the
// partitioner adds the str.gid predicate.
var PopulateAddresses1 = `
INSERT INTO %GNAF_SCHEMA%.temp_addresses
SELECT adr.address_detail_pid,
       adr.street_locality_pid,
       adr.locality_pid,
       adr.alias_principal,
       adr.primary_secondary,
       initcap(adr.building_name),
       concat_ws('', adr.lot_number_prefix, adr.lot_number, adr.lot_number_suffix),
       concat_ws('', adr.flat_number_prefix, adr.flat_number, adr.flat_number_suffix),
       concat_ws('', adr.level_number_prefix, adr.level_number, adr.level_number_suffix),
       concat_ws('', adr.number_first_prefix, adr.number_first, adr.number_first_suffix),
       concat_ws('', adr.number_last_prefix, adr.number_last, adr.number_last_suffix),
       str.street_name,
       str.street_type,
       str.street_suffix,
       str.full_street_name,
       adr.postcode,
       adr.confidence,
       adr.legal_parcel_id,
       geo.latitude,
       geo.longitude,
       aut.name,
       adr.level_geocoded_code
FROM %RAW_GNAF_SCHEMA%.address_detail AS adr
INNER JOIN %GNAF_SCHEMA%.streets AS str ON adr.street_locality_pid = str.street_locality_pid
INNER JOIN %RAW_GNAF_SCHEMA%.address_default_geocode AS geo ON adr.address_detail_pid = geo.address_detail_pid
LEFT OUTER JOIN %RAW_GNAF_SCHEMA%.geocode_type_aut AS aut ON geo.geocode_type_code = aut.code
WHERE adr.date_retired IS NULL
`

// step 7 prep - temp address table the partitioned inserts write into
var CreateTempAddresses = `
DROP TABLE IF EXISTS %GNAF_SCHEMA%.temp_addresses CASCADE;
CREATE UNLOGGED TABLE %GNAF_SCHEMA%.temp_addresses (
    gnaf_pid text,
    street_locality_pid text,
    locality_pid text,
    alias_principal character(1),
    primary_secondary text,
    building_name text,
    lot_number text,
    flat_number text,
    level_number text,
    number_first text,
    number_last text,
    street_name text,
    street_type text,
    street_suffix text,
    full_street_name text,
    postcode text,
    confidence integer,
    legal_parcel_id text,
    latitude numeric(10,8),
    longitude numeric(11,8),
    geocode_type text,
    reliability integer
);
`

// step 8
var PopulateAddressAliasLookup = `
INSERT INTO %GNAF_SCHEMA%.address_alias_lookup (principal_pid, alias_pid, alias_type)
SELECT als.principal_pid,
       als.alias_pid,
       aut.name
FROM %RAW_GNAF_SCHEMA%.address_alias AS als
INNER JOIN %RAW_GNAF_SCHEMA%.address_alias_type_aut AS aut ON als.alias_type_code = aut.code
WHERE als.date_retired IS NULL;

ANALYZE %GNAF_SCHEMA%.address_alias_lookup;
`

// step 9
var PopulateAddressSecondaryLookup = `
INSERT INTO %GNAF_SCHEMA%.address_secondary_lookup (primary_pid, secondary_pid, join_type)
SELECT pse.primary_pid,
       pse.secondary_pid,
       pse.ps_join_type_code
FROM %RAW_GNAF_SCHEMA%.primary_secondary AS pse
WHERE pse.date_retired IS NULL;
`

// step 10 - Melbourne is the one locality with 2 postcodes (3000 and 3004,
// split by the Yarra). Split it so postcode joins stay one to one.
var SplitMelbourne = `
UPDATE %GNAF_SCHEMA%.localities
SET locality_name = 'Melbourne (3000)',
    postcode = '3000'
WHERE locality_pid = 'loc9901d119afda';

INSERT INTO %GNAF_SCHEMA%.localities (locality_pid, locality_name, postcode, state, locality_class)
SELECT 'loc9901d119afda_2',
       'Melbourne (3004)',
       '3004',
       state,
       locality_class
FROM %GNAF_SCHEMA%.localities
WHERE locality_pid = 'loc9901d119afda';

UPDATE %GNAF_SCHEMA%.temp_addresses
SET locality_pid = 'loc9901d119afda_2'
WHERE locality_pid = 'loc9901d119afda'
  AND postcode = '3004';
`

// step 11
var FinaliseLocalities = `
UPDATE %GNAF_SCHEMA%.localities AS loc
SET street_count = counts.street_count
FROM (
    SELECT locality_pid, count(*) AS street_count
    FROM %GNAF_SCHEMA%.streets
    GROUP BY locality_pid
) AS counts
WHERE loc.locality_pid = counts.locality_pid;

UPDATE %GNAF_SCHEMA%.localities AS loc
SET address_count = counts.address_count
FROM (
    SELECT locality_pid, count(*) AS address_count
    FROM %GNAF_SCHEMA%.temp_addresses
    GROUP BY locality_pid
) AS counts
WHERE loc.locality_pid = counts.locality_pid;

ANALYZE %GNAF_SCHEMA%.localities;
`

// step 12 - runs partitioned by locality gid range ("loc" alias)
var PopulateAddresses2 = `
INSERT INTO %GNAF_SCHEMA%.address_principals
    (gnaf_pid, street_locality_pid, locality_pid, alias_principal, primary_secondary,
     building_name, lot_number, flat_number, level_number, number_first, number_last,
     street_name, street_type, street_suffix, address, locality_name, postcode, state,
     locality_postcode, confidence, legal_parcel_id, latitude, longitude, geocode_type,
     reliability, geom)
SELECT adr.gnaf_pid,
       adr.street_locality_pid,
       adr.locality_pid,
       adr.alias_principal,
       adr.primary_secondary,
       adr.building_name,
       adr.lot_number,
       adr.flat_number,
       adr.level_number,
       adr.number_first,
       adr.number_last,
       adr.street_name,
       adr.street_type,
       adr.street_suffix,
       trim(concat_ws(' ', adr.number_first, adr.full_street_name)),
       loc.locality_name,
       adr.postcode,
       loc.state,
       loc.postcode,
       adr.confidence,
       adr.legal_parcel_id,
       adr.latitude,
       adr.longitude,
       adr.geocode_type,
       adr.reliability,
       ST_SetSRID(ST_MakePoint(adr.longitude, adr.latitude), 4283)
FROM %GNAF_SCHEMA%.temp_addresses AS adr
INNER JOIN %GNAF_SCHEMA%.localities AS loc ON adr.locality_pid = loc.locality_pid
WHERE adr.alias_principal = 'P'
`

var PopulateAddressAliases = `
INSERT INTO %GNAF_SCHEMA%.address_aliases
SELECT nextval(pg_get_serial_sequence('%GNAF_SCHEMA%.address_aliases', 'gid')),
       adr.gnaf_pid,
       adr.street_locality_pid,
       adr.locality_pid,
       adr.alias_principal,
       adr.primary_secondary,
       adr.building_name,
       adr.lot_number,
       adr.flat_number,
       adr.level_number,
       adr.number_first,
       adr.number_last,
       adr.street_name,
       adr.street_type,
       adr.street_suffix,
       trim(concat_ws(' ', adr.number_first, adr.full_street_name)),
       loc.locality_name,
       adr.postcode,
       loc.state,
       loc.postcode,
       adr.confidence,
       adr.legal_parcel_id,
       NULL,
       adr.latitude,
       adr.longitude,
       adr.geocode_type,
       adr.reliability,
       ST_SetSRID(ST_MakePoint(adr.longitude, adr.latitude), 4283)
FROM %GNAF_SCHEMA%.temp_addresses AS adr
INNER JOIN %GNAF_SCHEMA%.localities AS loc ON adr.locality_pid = loc.locality_pid
WHERE adr.alias_principal = 'A';
`

var DropTempAddresses = `
DROP TABLE IF EXISTS %GNAF_SCHEMA%.temp_addresses CASCADE;
`

// step 13 - aggregate locality polygons into near-correct postcode
// boundaries using address-derived postcodes. Runs split by state; the
// partitioner splices the state predicate in before GROUP BY.
var DerivedPostcodeBdys = `
INSERT INTO %ADMIN_SCHEMA%.postcode_bdys (postcode, state, address_count, geom)
SELECT bdy.postcode,
       bdy.state,
       sum(bdy.address_count),
       ST_Multi(ST_Union(bdy.geom))
FROM (
    SELECT loc.postcode,
           bdys.state,
           loc.address_count,
           bdys.geom
    FROM %GNAF_SCHEMA%.localities AS loc
    INNER JOIN %ADMIN_SCHEMA%.locality_bdys AS bdys ON loc.locality_pid = bdys.locality_pid
    WHERE loc.postcode IS NOT NULL
) AS bdy
GROUP BY bdy.postcode, bdy.state;
`

var CreatePostcodeBdys = `
DROP TABLE IF EXISTS %ADMIN_SCHEMA%.postcode_bdys CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.postcode_bdys (
    gid serial NOT NULL,
    postcode text,
    state text,
    address_count integer,
    geom geometry(MultiPolygon, 4283)
);
`

var PostcodeAnalysisTable = `
DROP TABLE IF EXISTS %ADMIN_SCHEMA%.postcode_bdys_analysis CASCADE;
CREATE TABLE %ADMIN_SCHEMA%.postcode_bdys_analysis AS
SELECT postcode,
       state,
       ST_Subdivide(geom, 512) AS geom
FROM %ADMIN_SCHEMA%.postcode_bdys;
CREATE INDEX postcode_bdys_analysis_geom_idx ON %ADMIN_SCHEMA%.postcode_bdys_analysis USING gist (geom);
ANALYZE %ADMIN_SCHEMA%.postcode_bdys_analysis;
`

// step 14 - one statement per line, run in parallel
var CreateReferenceIndexes = `
ALTER TABLE ONLY %GNAF_SCHEMA%.localities ADD CONSTRAINT localities_pk PRIMARY KEY (locality_pid);
ALTER TABLE ONLY %GNAF_SCHEMA%.streets ADD CONSTRAINT streets_pk PRIMARY KEY (street_locality_pid);
CREATE UNIQUE INDEX localities_gid_idx ON %GNAF_SCHEMA%.localities USING btree (gid);
CREATE UNIQUE INDEX streets_gid_idx ON %GNAF_SCHEMA%.streets USING btree (gid);
CREATE UNIQUE INDEX address_principals_gnaf_pid_idx ON %GNAF_SCHEMA%.address_principals USING btree (gnaf_pid);
CREATE INDEX address_principals_locality_pid_idx ON %GNAF_SCHEMA%.address_principals USING btree (locality_pid);
CREATE INDEX address_principals_postcode_idx ON %GNAF_SCHEMA%.address_principals USING btree (postcode);
CREATE INDEX address_principals_geom_idx ON %GNAF_SCHEMA%.address_principals USING gist (geom);
CREATE INDEX address_aliases_gnaf_pid_idx ON %GNAF_SCHEMA%.address_aliases USING btree (gnaf_pid);
CREATE INDEX address_aliases_locality_pid_idx ON %GNAF_SCHEMA%.address_aliases USING btree (locality_pid);
CREATE INDEX locality_aliases_locality_pid_idx ON %GNAF_SCHEMA%.locality_aliases USING btree (locality_pid);
CREATE INDEX street_aliases_street_locality_pid_idx ON %GNAF_SCHEMA%.street_aliases USING btree (street_locality_pid);
CREATE INDEX locality_neighbour_lookup_locality_pid_idx ON %GNAF_SCHEMA%.locality_neighbour_lookup USING btree (locality_pid);
CREATE INDEX address_alias_lookup_principal_pid_idx ON %GNAF_SCHEMA%.address_alias_lookup USING btree (principal_pid);
CREATE INDEX address_secondary_lookup_primary_pid_idx ON %GNAF_SCHEMA%.address_secondary_lookup USING btree (primary_pid);
CREATE INDEX postcode_bdys_postcode_idx ON %ADMIN_SCHEMA%.postcode_bdys USING btree (postcode);
CREATE INDEX postcode_bdys_geom_idx ON %ADMIN_SCHEMA%.postcode_bdys USING gist (geom);
`
