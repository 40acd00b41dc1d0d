package main

import (
	"net/http"
	"runtime/debug"

	_ "net/http/pprof"

	log "github.com/sirupsen/logrus"

	"github.com/imroc/req"

	"github.com/nanopics/NanoBananaBot/internal"
	"github.com/nanopics/NanoBananaBot/internal/api"
	"github.com/nanopics/NanoBananaBot/internal/api/admin"
	"github.com/nanopics/NanoBananaBot/internal/network"
	"github.com/nanopics/NanoBananaBot/internal/telegram"
)

// setLogger will initialize the log format
func setLogger() {
	log.SetLevel(log.DebugLevel)
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)
}

func main() {
	// set logger
	setLogger()

	defer withRecovery()
	if err := internal.Load("config.yaml"); err != nil {
		panic(err)
	}
	// route all outgoing requests through the configured proxy
	client, err := network.GetClient()
	if err != nil {
		panic(err)
	}
	req.SetClient(client)

	bot := telegram.NewBot()
	startAdminServer(bot)
	bot.Start()
}

// startAdminServer exposes the maintenance endpoints when an admin
// api host is configured.
func startAdminServer(bot *telegram.PaintBot) {
	if internal.Configuration.Bot.AdminAPIHost == "" {
		return
	}
	adminService := admin.New(bot)
	adminServer := api.NewServer(internal.Configuration.Bot.AdminAPIHost)
	adminServer.AppendRoute("/admin/generate/enable", adminService.EnableGenerate)
	adminServer.AppendRoute("/admin/generate/disable", adminService.DisableGenerate)
	adminServer.AppendRoute("/admin/reset_records", adminService.ResetRecords)
	adminServer.PathPrefix("/debug/pprof/", http.DefaultServeMux)
}

func withRecovery() {
	if r := recover(); r != nil {
		log.Errorln("Recovered panic: ", r)
		debug.PrintStack()
	}
}
