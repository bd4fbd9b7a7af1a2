/*
Pgserver starts a grammar compilation server and begins listening for new
connections.

Usage:

	pgserver [flags]
	pgserver [flags] -l [[ADDRESS]:PORT]

Once started, the server will listen for HTTP requests and respond to them
using a REST API rooted at /api/v1. By default, it will listen on
localhost:8080. This can be changed with the --listen/-l flag (or the
corresponding environment variable).

If a JWT token secret is not given, one will be automatically generated and
seeded at startup. As a consequence, in this mode of operation all tokens are
rendered invalid as soon as the server shuts down. This is suitable for
testing, but must be given via either CLI flags or environment variable if
running in production.

The flags are:

	-v, --version
		Give the current version of the server and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment
		variable GUDGEON_LISTEN_ADDRESS, and if that is not given, will
		default to localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less than
		32 bytes in the secret, it will be repeated until it is. The maximum
		size is 64 bytes. If not given, will default to the value of
		environment variable GUDGEON_TOKEN_SECRET. If no secret is specified
		or an empty secret is given, a random secret will be automatically
		generated. Note that any tokens issued with a random secret will
		become invalid as soon as the server shuts down.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the
		following: inmem, sqlite. inmem has no further params. sqlite needs
		the path to the data directory, such as sqlite:path/to/db_dir. If not
		given, will default to the value of environment variable
		GUDGEON_DATABASE. If no DB driver is specified or an empty one is
		given, an in-memory database is automatically selected.
*/
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dekarrin/gudgeon/internal/version"
	"github.com/dekarrin/gudgeon/registry"
	"github.com/dekarrin/gudgeon/server"
	"github.com/dekarrin/gudgeon/server/serr"
	"github.com/spf13/pflag"
)

const (
	EnvListen = "GUDGEON_LISTEN_ADDRESS"
	EnvSecret = "GUDGEON_TOKEN_SECRET"
	EnvDB     = "GUDGEON_DATABASE"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of the server and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (gudgeon v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	args := pflag.Args()
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		listenAddr = "localhost:8080"
	}
	if !strings.Contains(listenAddr, ":") {
		fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
		os.Exit(1)
	}

	var dbCfg server.Database
	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr == "" {
		dbCfg = server.Database{Type: server.DatabaseInMemory}
	} else {
		var err error
		dbCfg, err = server.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
			os.Exit(1)
		}
	}

	var tokSecret []byte
	tokSecStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		tokSecStr = *flagSecret
	}
	if tokSecStr != "" {
		tokSecret = []byte(tokSecStr)

		for len(tokSecret) < server.MinSecretSize {
			doubled := make([]byte, len(tokSecret)*2)
			copy(doubled, tokSecret)
			copy(doubled[len(tokSecret):], tokSecret)
			tokSecret = doubled
		}

		if len(tokSecret) > server.MaxSecretSize {
			fmt.Fprintf(os.Stderr, "Token secret is %d bytes, but it must be <= %d bytes\nDo -h for help.\n", len(tokSecret), server.MaxSecretSize)
			os.Exit(1)
		}
	} else {
		tokSecret = make([]byte, server.MaxSecretSize)
		if _, err := rand.Read(tokSecret); err != nil {
			fmt.Fprintf(os.Stderr, "Could not generate token secret: %s\n", err.Error())
			os.Exit(1)
		}

		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	}

	cfg := server.Config{
		TokenSecret: tokSecret,
		DB:          dbCfg,
	}

	svr, err := server.New(cfg)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}
	log.Printf("DEBUG Server initialized")

	_, err = svr.CreateUser(context.Background(), "admin", "password", "bogus@example.com", registry.Admin)
	if err != nil && !errors.Is(err, serr.ErrAlreadyExists) {
		log.Printf("ERROR could not create initial admin user: %v", err)
		os.Exit(2)
	}
	if !errors.Is(err, serr.ErrAlreadyExists) {
		log.Printf("INFO  Added initial admin user with password 'password'...")
	}

	log.Printf("INFO  Starting gudgeon grammar compilation server %s on %s...", version.ServerCurrent, listenAddr)
	if err := svr.ServeForever(listenAddr); err != nil {
		log.Fatalf("FATAL server exited: %s", err.Error())
	}
}
