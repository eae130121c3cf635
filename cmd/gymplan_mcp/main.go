// Package main runs the gymplan MCP server over stdio, for local editor and assistant use.
// The same tools are mounted on the main service at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/2beens/gymplan/internal/config"
	"github.com/2beens/gymplan/internal/db"
	"github.com/2beens/gymplan/internal/history"
	"github.com/2beens/gymplan/internal/plan"
	planmcp "github.com/2beens/gymplan/internal/plan/mcp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	owner := flag.String("owner", "", "plan owner the tools default to (config default_owner when empty)")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *owner == "" {
		*owner = cfg.DefaultOwner
	}

	ctx := context.Background()
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		MaxConns:       cfg.PostgresMaxConns,
		ConnectTimeout: 5 * time.Second,
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	planService := plan.NewService(plan.NewServiceParams{
		Repo:                       plan.NewRepo(dbPool),
		History:                    history.NewService(history.NewRepo(dbPool), nil),
		Analyzer:                   cfg.AdherenceAnalyzer(),
		DeriveSessionsFromTemplate: cfg.DeriveSessionsFromTemplate,
	})
	server := planmcp.NewServer(planService, *owner)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
