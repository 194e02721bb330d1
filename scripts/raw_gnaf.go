package scripts

// Raw GNAF scripts. Table names carry no schema prefix; the search_path
// header is rewritten to the target schema before execution.

var DropRawGnafTables = `
SET search_path = public

DROP TABLE IF EXISTS address_alias CASCADE;
DROP TABLE IF EXISTS address_default_geocode CASCADE;
DROP TABLE IF EXISTS address_detail CASCADE;
DROP TABLE IF EXISTS address_site CASCADE;
DROP TABLE IF EXISTS address_site_geocode CASCADE;
DROP TABLE IF EXISTS locality CASCADE;
DROP TABLE IF EXISTS locality_alias CASCADE;
DROP TABLE IF EXISTS locality_neighbour CASCADE;
DROP TABLE IF EXISTS primary_secondary CASCADE;
DROP TABLE IF EXISTS state CASCADE;
DROP TABLE IF EXISTS street_locality CASCADE;
DROP TABLE IF EXISTS street_locality_alias CASCADE;
DROP TABLE IF EXISTS address_alias_type_aut CASCADE;
DROP TABLE IF EXISTS flat_type_aut CASCADE;
DROP TABLE IF EXISTS geocode_reliability_aut CASCADE;
DROP TABLE IF EXISTS geocode_type_aut CASCADE;
DROP TABLE IF EXISTS geocoded_level_type_aut CASCADE;
DROP TABLE IF EXISTS level_type_aut CASCADE;
DROP TABLE IF EXISTS locality_alias_type_aut CASCADE;
DROP TABLE IF EXISTS locality_class_aut CASCADE;
DROP TABLE IF EXISTS street_class_aut CASCADE;
DROP TABLE IF EXISTS street_locality_alias_type_aut CASCADE;
DROP TABLE IF EXISTS street_suffix_aut CASCADE;
DROP TABLE IF EXISTS street_type_aut CASCADE;
`

var CreateRawGnafTables = `
SET search_path = public

CREATE TABLE address_detail (
    address_detail_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_last_modified date,
    date_retired date,
    building_name character varying(200),
    lot_number_prefix character varying(2),
    lot_number character varying(5),
    lot_number_suffix character varying(2),
    flat_type_code character varying(7),
    flat_number_prefix character varying(2),
    flat_number numeric(5,0),
    flat_number_suffix character varying(2),
    level_type_code character varying(4),
    level_number_prefix character varying(2),
    level_number numeric(3,0),
    level_number_suffix character varying(2),
    number_first_prefix character varying(3),
    number_first numeric(6,0),
    number_first_suffix character varying(2),
    number_last_prefix character varying(3),
    number_last numeric(6,0),
    number_last_suffix character varying(2),
    street_locality_pid character varying(15),
    location_description character varying(45),
    locality_pid character varying(15) NOT NULL,
    alias_principal character(1),
    postcode character varying(4),
    private_street character varying(75),
    legal_parcel_id character varying(20),
    confidence numeric(1,0),
    address_site_pid character varying(15) NOT NULL,
    level_geocoded_code numeric(2,0) NOT NULL,
    property_pid character varying(15),
    gnaf_property_pid character varying(15),
    primary_secondary character varying(1)
);

CREATE TABLE address_default_geocode (
    address_default_geocode_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    address_detail_pid character varying(15) NOT NULL,
    geocode_type_code character varying(4) NOT NULL,
    longitude numeric(11,8),
    latitude numeric(10,8)
);

CREATE TABLE address_alias (
    address_alias_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    principal_pid character varying(15) NOT NULL,
    alias_pid character varying(15) NOT NULL,
    alias_type_code character varying(10) NOT NULL,
    alias_comment character varying(200)
);

CREATE TABLE address_site (
    address_site_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    address_type character varying(8),
    address_site_name character varying(200)
);

CREATE TABLE address_site_geocode (
    address_site_geocode_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    address_site_pid character varying(15),
    geocode_site_name character varying(200),
    geocode_site_description character varying(45),
    geocode_type_code character varying(4),
    reliability_code numeric(1,0),
    boundary_extent numeric(7,0),
    planimetric_accuracy numeric(12,3),
    elevation numeric(7,0),
    longitude numeric(11,8),
    latitude numeric(10,8)
);

CREATE TABLE locality (
    locality_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    locality_name character varying(100) NOT NULL,
    primary_postcode character varying(4),
    locality_class_code character(1),
    state_pid character varying(15) NOT NULL,
    gnaf_locality_pid character varying(15),
    gnaf_reliability_code numeric(1,0) NOT NULL
);

CREATE TABLE locality_alias (
    locality_alias_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    locality_pid character varying(15) NOT NULL,
    name character varying(100) NOT NULL,
    postcode character varying(4),
    alias_type_code character varying(10) NOT NULL,
    state_pid character varying(15)
);

CREATE TABLE locality_neighbour (
    locality_neighbour_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    locality_pid character varying(15) NOT NULL,
    neighbour_locality_pid character varying(15) NOT NULL
);

CREATE TABLE primary_secondary (
    primary_secondary_pid character varying(15) NOT NULL,
    primary_pid character varying(15) NOT NULL,
    secondary_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    ps_join_type_code numeric(2,0) NOT NULL,
    ps_join_comment character varying(500)
);

CREATE TABLE state (
    state_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    state_name character varying(50) NOT NULL,
    state_abbreviation character varying(3) NOT NULL
);

CREATE TABLE street_locality (
    street_locality_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    street_class_code character(1) NOT NULL,
    street_name character varying(100) NOT NULL,
    street_type_code character varying(15),
    street_suffix_code character varying(15),
    locality_pid character varying(15) NOT NULL,
    gnaf_street_pid character varying(15),
    gnaf_street_confidence numeric(1,0),
    gnaf_reliability_code numeric(1,0) NOT NULL
);

CREATE TABLE street_locality_alias (
    street_locality_alias_pid character varying(15) NOT NULL,
    date_created date NOT NULL,
    date_retired date,
    street_locality_pid character varying(15) NOT NULL,
    street_name character varying(100) NOT NULL,
    street_type_code character varying(15),
    street_suffix_code character varying(15),
    alias_type_code character varying(10) NOT NULL
);

CREATE TABLE address_alias_type_aut (
    code character varying(10) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(30)
);

CREATE TABLE flat_type_aut (
    code character varying(7) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(30)
);

CREATE TABLE geocode_reliability_aut (
    code numeric(1,0) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(100)
);

CREATE TABLE geocode_type_aut (
    code character varying(4) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(250)
);

CREATE TABLE geocoded_level_type_aut (
    code numeric(2,0) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(70)
);

CREATE TABLE level_type_aut (
    code character varying(4) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(30)
);

CREATE TABLE locality_alias_type_aut (
    code character varying(10) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(30)
);

CREATE TABLE locality_class_aut (
    code character(1) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(200)
);

CREATE TABLE street_class_aut (
    code character(1) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(200)
);

CREATE TABLE street_locality_alias_type_aut (
    code character varying(10) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(15)
);

CREATE TABLE street_suffix_aut (
    code character varying(15) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(30)
);

CREATE TABLE street_type_aut (
    code character varying(15) NOT NULL,
    name character varying(50) NOT NULL,
    description character varying(15)
);
`

// Some address sites in recent releases arrive with no default geocode.
// Give them one from their address site geocode so downstream joins don't
// silently drop the address.
var FixMissingGeocodes = `
INSERT INTO %RAW_GNAF_SCHEMA%.address_default_geocode
    (address_default_geocode_pid, date_created, address_detail_pid, geocode_type_code, longitude, latitude)
SELECT adr.address_detail_pid,
       now()::date,
       adr.address_detail_pid,
       'FCS',
       geo.longitude,
       geo.latitude
FROM %RAW_GNAF_SCHEMA%.address_detail AS adr
INNER JOIN %RAW_GNAF_SCHEMA%.address_site_geocode AS geo ON adr.address_site_pid = geo.address_site_pid
LEFT OUTER JOIN %RAW_GNAF_SCHEMA%.address_default_geocode AS def ON adr.address_detail_pid = def.address_detail_pid
WHERE def.address_detail_pid IS NULL;
`

// One statement per line - split with SplitLines and run in parallel.
var CreateRawGnafIndexes = `
-- indexes required by the reference table builds
CREATE INDEX address_detail_street_locality_pid_idx ON %RAW_GNAF_SCHEMA%.address_detail USING btree (street_locality_pid);
CREATE INDEX address_detail_locality_pid_idx ON %RAW_GNAF_SCHEMA%.address_detail USING btree (locality_pid);
CREATE INDEX address_detail_address_site_pid_idx ON %RAW_GNAF_SCHEMA%.address_detail USING btree (address_site_pid);
CREATE INDEX address_default_geocode_address_detail_pid_idx ON %RAW_GNAF_SCHEMA%.address_default_geocode USING btree (address_detail_pid);
CREATE INDEX address_alias_principal_pid_idx ON %RAW_GNAF_SCHEMA%.address_alias USING btree (principal_pid);
CREATE INDEX address_alias_alias_pid_idx ON %RAW_GNAF_SCHEMA%.address_alias USING btree (alias_pid);
CREATE INDEX address_site_geocode_address_site_pid_idx ON %RAW_GNAF_SCHEMA%.address_site_geocode USING btree (address_site_pid);
CREATE INDEX locality_alias_locality_pid_idx ON %RAW_GNAF_SCHEMA%.locality_alias USING btree (locality_pid);
CREATE INDEX locality_neighbour_locality_pid_idx ON %RAW_GNAF_SCHEMA%.locality_neighbour USING btree (locality_pid);
CREATE INDEX primary_secondary_primary_pid_idx ON %RAW_GNAF_SCHEMA%.primary_secondary USING btree (primary_pid);
CREATE INDEX street_locality_locality_pid_idx ON %RAW_GNAF_SCHEMA%.street_locality USING btree (locality_pid);
CREATE INDEX street_locality_alias_street_locality_pid_idx ON %RAW_GNAF_SCHEMA%.street_locality_alias USING btree (street_locality_pid);
`

// One statement per line. Failures here are warnings: a release with known
// defects can still be loaded without integrity keys. Primary keys must be
// in place before the foreign key batch runs, so the two sets are separate.
var RawGnafPrimaryKeys = `
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.address_detail ADD CONSTRAINT address_detail_pk PRIMARY KEY (address_detail_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.address_default_geocode ADD CONSTRAINT address_default_geocode_pk PRIMARY KEY (address_default_geocode_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.address_alias ADD CONSTRAINT address_alias_pk PRIMARY KEY (address_alias_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.address_site ADD CONSTRAINT address_site_pk PRIMARY KEY (address_site_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.address_site_geocode ADD CONSTRAINT address_site_geocode_pk PRIMARY KEY (address_site_geocode_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.locality ADD CONSTRAINT locality_pk PRIMARY KEY (locality_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.locality_alias ADD CONSTRAINT locality_alias_pk PRIMARY KEY (locality_alias_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.locality_neighbour ADD CONSTRAINT locality_neighbour_pk PRIMARY KEY (locality_neighbour_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.primary_secondary ADD CONSTRAINT primary_secondary_pk PRIMARY KEY (primary_secondary_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.state ADD CONSTRAINT state_pk PRIMARY KEY (state_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.street_locality ADD CONSTRAINT street_locality_pk PRIMARY KEY (street_locality_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.street_locality_alias ADD CONSTRAINT street_locality_alias_pk PRIMARY KEY (street_locality_alias_pid);
`

var RawGnafForeignKeys = `
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.address_detail ADD CONSTRAINT address_detail_locality_fk FOREIGN KEY (locality_pid) REFERENCES %RAW_GNAF_SCHEMA%.locality(locality_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.address_detail ADD CONSTRAINT address_detail_address_site_fk FOREIGN KEY (address_site_pid) REFERENCES %RAW_GNAF_SCHEMA%.address_site(address_site_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.address_default_geocode ADD CONSTRAINT address_default_geocode_address_detail_fk FOREIGN KEY (address_detail_pid) REFERENCES %RAW_GNAF_SCHEMA%.address_detail(address_detail_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.street_locality ADD CONSTRAINT street_locality_locality_fk FOREIGN KEY (locality_pid) REFERENCES %RAW_GNAF_SCHEMA%.locality(locality_pid);
ALTER TABLE ONLY %RAW_GNAF_SCHEMA%.locality ADD CONSTRAINT locality_state_fk FOREIGN KEY (state_pid) REFERENCES %RAW_GNAF_SCHEMA%.state(state_pid);
`
