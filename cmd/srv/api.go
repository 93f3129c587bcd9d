package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(ct *cli.Context) error {
	server.loadConfig()
	server.loadLogger()
	server.loadContext()
	server.loadDatabase()
	server.loadRedis()
	server.loadEndpoints()
	server.loadRepos()
	server.loadDomains()
	server.loadDispatcher()
	server.loadMux()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.configs.ApiServer.Port),
		Handler: s.mux,
		BaseContext: func(net.Listener) context.Context {
			return s.ctx
		},
	}

	log.Printf("Starting server on port: %s\n", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}
	log.Printf("server stop")
	return nil
}
