// Command migrate applies the schema in migrations/<driver> to a Spanner or Postgres
// catalog store. On the Spanner emulator it also creates the instance and database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/offercat-service/internal/app/product/repo/pgrepo"
	"github.com/light-bringer/offercat-service/internal/config"
)

type options struct {
	driver   string
	project  string
	instance string
	database string
	dsn      string
	dir      string
}

func (o options) instanceName() string {
	return fmt.Sprintf("projects/%s/instances/%s", o.project, o.instance)
}

func (o options) databaseName() string {
	return o.instanceName() + "/databases/" + o.database
}

var log = zap.NewNop().Sugar()

func main() {
	var opts options
	flag.StringVar(&opts.driver, "driver", envOr("OFFERCAT_STORE_DRIVER", config.DriverSpanner), "store driver: spanner or postgres")
	flag.StringVar(&opts.project, "project", envOr("SPANNER_PROJECT_ID", "test-project"), "GCP project ID")
	flag.StringVar(&opts.instance, "instance", envOr("SPANNER_INSTANCE_ID", "dev-instance"), "Spanner instance ID")
	flag.StringVar(&opts.database, "database", envOr("SPANNER_DATABASE_ID", "offer-catalog-db"), "Spanner database ID")
	flag.StringVar(&opts.dsn, "dsn", os.Getenv("OFFERCAT_STORE_POSTGRES_DSN"), "Postgres DSN")
	flag.StringVar(&opts.dir, "migrations", "migrations", "directory with one sub-directory of SQL files per driver")
	flag.Parse()

	if logger, err := zap.NewDevelopment(); err == nil {
		log = logger.Sugar()
		defer func() { _ = logger.Sync() }()
	}

	if err := run(context.Background(), opts); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Info("migrations completed")
}

func run(ctx context.Context, opts options) error {
	files, err := migrationFiles(filepath.Join(opts.dir, opts.driver))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Infof("no migration files for driver %s", opts.driver)
		return nil
	}

	switch opts.driver {
	case config.DriverSpanner:
		return migrateSpanner(ctx, opts, files)
	case config.DriverPostgres:
		return migratePostgres(ctx, opts, files)
	default:
		return fmt.Errorf("driver %q has no migrations", opts.driver)
	}
}

func migrateSpanner(ctx context.Context, opts options, files []string) error {
	emulator := os.Getenv("SPANNER_EMULATOR_HOST")
	if emulator != "" {
		log.Infof("using Spanner emulator at %s", emulator)
		if err := ensureInstance(ctx, opts); err != nil {
			return fmt.Errorf("failed to ensure instance: %w", err)
		}
	}

	admin, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create database admin client: %w", err)
	}
	defer admin.Close()

	if err := ensureDatabase(ctx, admin, opts, emulator != ""); err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		name := filepath.Base(file)
		log.Infof("applying %s", name)

		op, err := admin.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
			Database:   opts.databaseName(),
			Statements: splitDDLStatements(string(content)),
		})
		if err != nil {
			return fmt.Errorf("failed to start DDL update for %s: %w", name, err)
		}
		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to apply DDL for %s: %w", name, err)
		}
	}
	return nil
}

// ensureInstance is only used against the emulator, which accepts any instance config.
func ensureInstance(ctx context.Context, opts options) error {
	admin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer admin.Close()

	_, err = admin.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: opts.instanceName()})
	switch status.Code(err) {
	case codes.OK:
		return nil
	case codes.NotFound:
	default:
		return err
	}

	log.Infof("creating instance %s", opts.instance)
	op, err := admin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     "projects/" + opts.project,
		InstanceId: opts.instance,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", opts.project),
			DisplayName: opts.instance,
			NodeCount:   1,
		},
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		log.Warnf("waiting for instance creation: %v", err)
	}
	return nil
}

func ensureDatabase(ctx context.Context, admin *database.DatabaseAdminClient, opts options, emulator bool) error {
	_, err := admin.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: opts.databaseName()})
	switch {
	case err == nil:
		return nil
	case status.Code(err) != codes.NotFound && emulator:
		// the emulator reports some transient states as Unknown; the DDL step will surface real problems
		log.Warnf("database check failed, continuing: %v", err)
		return nil
	case status.Code(err) != codes.NotFound:
		return err
	}

	log.Infof("creating database %s", opts.database)
	op, err := admin.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          opts.instanceName(),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", opts.database),
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = op.Wait(ctx)
	return err
}

func migratePostgres(ctx context.Context, opts options, files []string) error {
	if opts.dsn == "" {
		return errors.New("-dsn is required for the postgres driver")
	}
	db, err := pgrepo.Open(ctx, opts.dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	// files use IF NOT EXISTS throughout and may be re-applied
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		log.Infof("applying %s", filepath.Base(file))
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations in %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// splitDDLStatements drops full-line comments and splits on semicolons.
// Spanner's DDL API takes one statement per entry without the terminator.
func splitDDLStatements(content string) []string {
	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var stmts []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
