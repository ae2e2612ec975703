package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Joseda-hg/todolist/internal/config"
	"github.com/Joseda-hg/todolist/internal/db"
	"github.com/Joseda-hg/todolist/internal/session"
	"github.com/Joseda-hg/todolist/internal/tui"
	"github.com/Joseda-hg/todolist/internal/web"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	driverFlag := flag.String("driver", "", "database driver (sqlite or mysql)")
	dsnFlag := flag.String("dsn", "", "database dsn (file path for sqlite)")
	langFlag := flag.String("lang", "", "default display language")
	webFlag := flag.Bool("web", false, "enable web server")
	webOnlyFlag := flag.Bool("web-only", false, "run web server only")
	portFlag := flag.Int("port", 0, "web server port")
	flag.Parse()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	if *driverFlag != "" {
		cfg.Driver = *driverFlag
	}
	if *dsnFlag != "" {
		cfg.DSN = *dsnFlag
	}
	if cfg.Driver == db.DriverSQLite && cfg.DSN == "" {
		cfg.DSN = filepath.Join(filepath.Dir(cfgPath), "todolist.db")
	}
	if *langFlag != "" {
		cfg.Language = *langFlag
	}
	if *webFlag || *webOnlyFlag {
		cfg.WebEnabled = true
	}
	if *portFlag != 0 {
		cfg.WebPort = *portFlag
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = 8080
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		log.Fatal(err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.WebEnabled {
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		handler := web.NewServer(store, cfg.Language).Handler()
		if *webOnlyFlag {
			log.Printf("Web server running at http://localhost%s", addr)
			log.Fatal(http.ListenAndServe(addr, handler))
		}

		go func() {
			log.Printf("Web server running at http://localhost%s", addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				log.Printf("web server error: %v", err)
			}
		}()
	}

	state := session.New()
	state.SetLanguage(cfg.Language)
	if err := tui.Run(store, state); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func openStore(cfg config.Config) (*db.Store, error) {
	if cfg.Driver == db.DriverSQLite {
		if err := config.EnsureDir(cfg.DSN); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	return db.NewStore(sqlDB, cfg.Driver), nil
}
