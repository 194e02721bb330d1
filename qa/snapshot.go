package qa

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/minus34/gnaf-loader-go/database"
)

// SnapshotRow is one qa table row in the parquet snapshot.
type SnapshotRow struct {
	SchemaName string `parquet:"name=schema_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY, repetitiontype=REQUIRED"`
	TableName  string `parquet:"name=table_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY, repetitiontype=REQUIRED"`
	Aus        int64  `parquet:"name=aus, type=INT64, repetitiontype=REQUIRED"`
	Act        int64  `parquet:"name=act, type=INT64, repetitiontype=REQUIRED"`
	Nsw        int64  `parquet:"name=nsw, type=INT64, repetitiontype=REQUIRED"`
	Nt         int64  `parquet:"name=nt, type=INT64, repetitiontype=REQUIRED"`
	Ot         int64  `parquet:"name=ot, type=INT64, repetitiontype=REQUIRED"`
	Qld        int64  `parquet:"name=qld, type=INT64, repetitiontype=REQUIRED"`
	Sa         int64  `parquet:"name=sa, type=INT64, repetitiontype=REQUIRED"`
	Tas        int64  `parquet:"name=tas, type=INT64, repetitiontype=REQUIRED"`
	Vic        int64  `parquet:"name=vic, type=INT64, repetitiontype=REQUIRED"`
	Wa         int64  `parquet:"name=wa, type=INT64, repetitiontype=REQUIRED"`
}

// WriteSnapshot archives the qa row counts of the given schemas to a
// parquet file, for keeping release-over-release history outside the
// database.
func WriteSnapshot(ctx context.Context, db database.Querier, schemas []string, path string) error {
	var snapshotRows []SnapshotRow

	for _, schema := range schemas {
		rows, err := db.Query(ctx, fmt.Sprintf(
			"SELECT table_name, aus, act, nsw, nt, ot, qld, sa, tas, vic, wa FROM %s.qa ORDER BY table_name", schema))
		if err != nil {
			return errors.Wrapf(err, "unable to read %s.qa for snapshot", schema)
		}

		for rows.Next() {
			row := SnapshotRow{SchemaName: schema}
			counts := [10]*int64{}
			if err := rows.Scan(&row.TableName, &counts[0], &counts[1], &counts[2], &counts[3], &counts[4],
				&counts[5], &counts[6], &counts[7], &counts[8], &counts[9]); err != nil {
				rows.Close()
				return err
			}

			targets := []*int64{&row.Aus, &row.Act, &row.Nsw, &row.Nt, &row.Ot, &row.Qld, &row.Sa, &row.Tas, &row.Vic, &row.Wa}
			for i, count := range counts {
				if count != nil {
					*targets[i] = *count
				}
			}

			snapshotRows = append(snapshotRows, row)
		}
		closeErr := rows.Err()
		rows.Close()
		if closeErr != nil {
			return closeErr
		}
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create snapshot file %s", path)
	}

	pw, err := writer.NewParquetWriter(fw, new(SnapshotRow), 4)
	if err != nil {
		fw.Close()
		return errors.Wrap(err, "unable to create parquet writer")
	}

	for _, row := range snapshotRows {
		if err := pw.Write(row); err != nil {
			fw.Close()
			return errors.Wrap(err, "unable to write snapshot row")
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return errors.Wrap(err, "unable to finalize snapshot")
	}

	return fw.Close()
}
