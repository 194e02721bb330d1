package main

import (
	"context"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/minus34/gnaf-loader-go/database"
	"github.com/minus34/gnaf-loader-go/pipeline"
	"github.com/minus34/gnaf-loader-go/settings"
	"github.com/minus34/gnaf-loader-go/shapefile"
)

func main() {
	config, err := settings.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	setupLogging(config.LogFile)
	config.LogValues()

	ctx := context.Background()

	pool, err := database.Connect(ctx, config)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	feats, err := database.DetectFeatures(ctx, pool)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Infof("Postgres : %s", feats.PostgresVersion)
	log.Infof("PostGIS : %s", feats.PostGISVersion)

	importer, err := shapefile.NewTool(config.ConnectionString)
	if err != nil {
		log.Fatalf("%v", err)
	}

	timeStart := time.Now()
	if err := pipeline.New(config, pool, feats, importer).Run(ctx); err != nil {
		log.Fatalf("Load failed: %v", err)
	}

	log.Infof("Total time : %v", time.Since(timeStart).Round(time.Millisecond))
}

// setupLogging sends log output to the console and the log file at once.
func setupLogging(logFile string) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if logFile == "" {
		return
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warnf("couldn't open log file %s : %v - logging to console only", logFile, err)
		return
	}

	log.SetOutput(io.MultiWriter(os.Stdout, file))
}
