// This file is a helper for running tests with testcontainers.
// It is used by cmd/testcontainers as a standalone executable and by the e2e tests.
// Expects environment variables to be loaded from .env files.
//

package helpers

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"text/template"
	"time"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/localnerve/fictiondb/data"
	"github.com/localnerve/fictiondb/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm/logger"
)

const imageName = "fictiondb-test:latest"

type TestContainers struct {
	Network                   *testcontainers.DockerNetwork
	DBContainer               testcontainers.Container
	AuthorizerContainer       testcontainers.Container
	FictionDBContainer        testcontainers.Container
	FictionDBBuilderContainer testcontainers.Container
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.FictionDBContainer != nil {
		if err := tc.FictionDBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate FictionDB: %v", err)
		}
	}
	if tc.FictionDBBuilderContainer != nil {
		if err := tc.FictionDBBuilderContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate FictionDB Builder: %v", err)
		}
	}
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// BaseURL returns the host address of the running service
func (tc *TestContainers) BaseURL(ctx context.Context) (string, error) {
	host, err := tc.FictionDBContainer.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := tc.FictionDBContainer.MappedPort(ctx, nat.Port(os.Getenv("PORT")+"/tcp"))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%s", host, port.Port()), nil
}

func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	debugContainer := os.Getenv("DEBUG_CONTAINER")
	authProvider := os.Getenv("AUTH_PROVIDER")

	// Create a network
	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw
	networkName := nw.Name

	// Create and start the Database container
	dbType := os.Getenv("DB_TYPE")
	dbNetworkName := os.Getenv("DB_HOST")
	tcpDbPort, err := nat.NewPort("tcp", os.Getenv("DB_PORT"))
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{string(tcpDbPort)},

			Env:        getDBInitEnvMap(dbType),
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {dbNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start Database")
	}
	testContainers.DBContainer = dbContainer

	// Initialize the database(s)
	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	logMessage(t, "DB_HOST=%s DB_PORT=%s", dbHost, dbPort.Port())
	switch dbType {
	case "postgres":
		if err := performPostgresDBInit(dbHost, dbPort); err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to initialize databases")
		}
	case "mysql", "mariadb":
		if err := performMySqlDBInit(dbHost, dbPort); err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to initialize databases")
		}
	}

	// The Authorizer container only runs when the service authenticates against it
	authzNetworkName := "authorizer"
	if authProvider == "authorizer" {
		tcpAuthzPort, err := nat.NewPort("tcp", os.Getenv("AUTHZ_PORT"))
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to create Authorizer port")
		}
		authzDbConnection := fmt.Sprintf("root:%s@tcp(%s:%s)/%s", os.Getenv("DB_ROOT_PASSWORD"), dbNetworkName, os.Getenv("DB_PORT"), os.Getenv("AUTHZ_DATABASE"))
		authzLogLevel := "info"
		if debugContainer == "true" {
			authzLogLevel = "debug"
		}
		authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        os.Getenv("AUTHZ_IMAGE"),
				ExposedPorts: []string{string(tcpAuthzPort)},
				Env: map[string]string{
					"ENV":           "production",
					"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
					"PORT":          os.Getenv("AUTHZ_PORT"),
					"DATABASE_TYPE": dbType,
					"DATABASE_NAME": os.Getenv("AUTHZ_DATABASE"),
					"DATABASE_URL":  authzDbConnection,
					"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
					"ROLES":         "admin,user",
					"DEFAULT_ROLES": "user",
					"LOG_LEVEL":     authzLogLevel,
				},
				WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(10 * time.Second),
				Networks:   []string{networkName},
				NetworkAliases: map[string][]string{
					networkName: {authzNetworkName},
				},
			},
			Started: true,
		})
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to start Authorizer")
		}
		testContainers.AuthorizerContainer = authorizerContainer

		// Log the localhost and mapped ports for Authorizer for test processes
		authzHost, _ := authorizerContainer.Host(ctx)
		authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
		logMessage(t, "AUTHZ_URL=%s:%s", authzHost, authzPort.Port())
	}

	// Check if image exists
	imageExists, err := imageExists(ctx, imageName)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to check if image exists")
	}

	portNumber := os.Getenv("PORT")
	tcpPort, err := nat.NewPort("tcp", portNumber)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create FictionDB port")
	}

	exposedPorts := []string{string(tcpPort)}
	if debugContainer == "true" {
		exposedPorts = append(exposedPorts, "2345/tcp")
	}

	hostConfigModifier := func(hostConfig *container.HostConfig) {
		if debugContainer == "true" {
			hostConfig.PortBindings = nat.PortMap{
				"2345/tcp": []nat.PortBinding{
					{HostIP: "127.0.0.1", HostPort: "2345"}, // Force local 2345
				},
			}
			hostConfig.CapAdd = []string{"SYS_PTRACE"}
			hostConfig.SecurityOpt = []string{"apparmor:unconfined"}
		}
	}

	var waitStrategy wait.Strategy
	waitStrategy = wait.ForHTTP("/api/health").WithPort(tcpPort).WithStartupTimeout(30 * time.Second)
	if debugContainer == "true" {
		waitStrategy = wait.ForLog("API server listening at: [::]:2345").WithStartupTimeout(5 * time.Minute)
	}

	env := map[string]string{
		"DB_TYPE":             dbType,
		"DB_HOST":             dbNetworkName,
		"DB_PORT":             os.Getenv("DB_PORT"),
		"DB_DATABASE":         os.Getenv("DB_DATABASE"),
		"DB_USER":             os.Getenv("DB_USER"),
		"DB_PASSWORD":         os.Getenv("DB_PASSWORD"),
		"DB_CONNECTION_LIMIT": os.Getenv("DB_CONNECTION_LIMIT"),
		"AUTH_PROVIDER":       authProvider,
		"LOG_FORMAT":          "json",
		"PORT":                portNumber,
	}
	if authProvider == "authorizer" {
		env["AUTHZ_URL"] = fmt.Sprintf("http://%s:%s", authzNetworkName, os.Getenv("AUTHZ_PORT"))
		env["AUTHZ_CLIENT_ID"] = os.Getenv("AUTHZ_CLIENT_ID")
	}

	// Create FictionDB container request (we add to it later)
	containerRequest := testcontainers.ContainerRequest{
		ExposedPorts:       exposedPorts,
		Env:                env,
		HostConfigModifier: hostConfigModifier,
		WaitingFor:         waitStrategy,
		Networks:           []string{networkName},
	}

	if debugContainer == "true" {
		containerRequest.Entrypoint = []string{
			"/usr/local/bin/dlv",
			"--listen=:2345",
			"--headless=true",
			"--api-version=2",
			"--accept-multiclient",
			"exec",
			"./fictiondb",
		}
	}

	if !imageExists {
		// Build the builder image and add fromDockerfile to the container request
		resourceReaperSessionID := uuid.New().String()

		buildArgs := map[string]*string{
			"RESOURCE_REAPER_SESSION_ID": &resourceReaperSessionID,
		}
		if debugContainer == "true" {
			buildArgs["DEBUG"] = &debugContainer
		}

		buildContext := os.Getenv("TESTCONTAINERS_BUILD_CONTEXT")
		if buildContext == "" {
			buildContext = "../.."
		}

		logMessage(t, "Image %s does not exist, building...", imageName)
		builderContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    buildContext,
					Dockerfile: "Dockerfile",
					Repo:       "fictiondb-test-builder",
					Tag:        "latest",
					BuildArgs:  buildArgs,
					BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
						opts.Target = "builder" // Build specific stage
					},
					PrintBuildLog: true,
				},
			},
			Started: false,
		})
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to build fictiondb-test-builder")
		}
		testContainers.FictionDBBuilderContainer = builderContainer

		imageNameParts := strings.Split(imageName, ":")
		containerRequest.FromDockerfile = testcontainers.FromDockerfile{
			Context:    buildContext,
			Dockerfile: "Dockerfile",
			Repo:       imageNameParts[0],
			Tag:        imageNameParts[1],
			KeepImage:  true, // Keep the image so we can reuse it
			BuildArgs:  buildArgs,
			BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
				opts.Target = "runtime"
			},
			PrintBuildLog: true,
		}
	} else {
		logMessage(t, "Image %s exists, reusing...", imageName)
		containerRequest.Image = imageName
	}

	// Create and start the FictionDB container
	fictiondbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: containerRequest,
		Started:          true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start FictionDB")
	}
	testContainers.FictionDBContainer = fictiondbContainer

	baseURL, _ := testContainers.BaseURL(ctx)
	logMessage(t, "BASE_URL=%s", baseURL)

	logMessage(t, "FictionDB testcontainer started successfully")
	return testContainers, nil
}

func getDBInitEnvMap(dbType string) map[string]string {
	switch dbType {
	case "postgres":
		return map[string]string{
			"POSTGRES_PASSWORD": os.Getenv("DB_PASSWORD"),
			"POSTGRES_USER":     os.Getenv("DB_USER"),
			"POSTGRES_DB":       os.Getenv("DB_DATABASE"),
		}
	case "mariadb", "mysql":
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
		}
	}
	return nil
}

// initParams fills the initdb templates
type initParams struct {
	Database string
	User     string
	Password string
}

func currentInitParams() initParams {
	return initParams{
		Database: os.Getenv("DB_DATABASE"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
	}
}

func renderSQL(name, text string, params initParams) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func performMySqlDBInit(dbHost string, dbPort nat.Port) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", os.Getenv("DB_ROOT_PASSWORD"), dbHost, dbPort.Port()))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer db.Close()

	if err := waitForPing(db); err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	if authzDB := os.Getenv("AUTHZ_DATABASE"); authzDB != "" {
		if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", authzDB)); err != nil {
			return fmt.Errorf("failed to create %s: %w", authzDB, err)
		}
	}

	params := currentInitParams()
	for _, step := range []struct{ name, text string }{
		{"001-database.sql", data.InitdbMariaDBDatabase},
		{"002-privileges.sql", data.InitdbMariaDBPrivileges},
	} {
		query, err := renderSQL(step.name, step.text, params)
		if err != nil {
			return err
		}
		if err := executeSQL(db, query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", step.name, err)
		}
	}

	return nil
}

func performPostgresDBInit(dbHost string, dbPort nat.Port) error {
	params := currentInitParams()
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort.Port(), params.User, params.Password, params.Database)

	gdb, err := database.Open(postgres.Open(dsn), logger.Silent)
	if err != nil {
		return err
	}
	db, err := gdb.DB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := waitForPing(db); err != nil {
		return fmt.Errorf("PostgreSQL not ready after 30 seconds: %w", err)
	}

	query, err := renderSQL("001-privileges.sql", data.InitdbPostgresPrivileges, params)
	if err != nil {
		return err
	}
	return executeSQL(db, query)
}

// waitForPing waits for the connection to be really ready
func waitForPing(db *sql.DB) error {
	var err error
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return err
}

func executeSQL(db *sql.DB, sql string) error {
	lines := strings.Split(sql, "\n")

	var ncls []string
	for _, l := range lines {
		ncl := excludeComment(l)
		ncls = append(ncls, ncl)
	}

	l := strings.Join(ncls, " ")
	queries := strings.Split(l, ";")
	queries = queries[:len(queries)-1]

	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		_, err := db.Exec(q)
		if err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

func excludeComment(line string) string {
	d := "\""
	s := "'"
	c := "--"

	var nc string
	ck := line
	mx := len(line) + 1

	for {
		if len(ck) == 0 {
			return nc
		}

		di := strings.Index(ck, d)
		si := strings.Index(ck, s)
		ci := strings.Index(ck, c)

		if di < 0 {
			di = mx
		}
		if si < 0 {
			si = mx
		}
		if ci < 0 {
			ci = mx
		}

		var ei int

		if di < si && di < ci {
			nc += ck[:di+1]
			ck = ck[di+1:]
			ei = strings.Index(ck, d)
		} else if si < di && si < ci {
			nc += ck[:si+1]
			ck = ck[si+1:]
			ei = strings.Index(ck, s)
		} else if ci < di && ci < si {
			return nc + ck[:ci]
		} else {
			return nc + ck
		}

		nc += ck[:ei+1]
		ck = ck[ei+1:]
	}
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, image := range images {
		for _, tag := range image.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
