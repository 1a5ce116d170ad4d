package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"google.golang.org/grpc"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/bayleafwalker/modbinder/internal/catalog"
	"github.com/bayleafwalker/modbinder/internal/mod"
	"github.com/bayleafwalker/modbinder/internal/selector"
)

func main() {
	var listenAddr string
	var catalogDir string
	var gameVersion string
	var pins string
	flag.StringVar(&listenAddr, "listen", ":50051", "address to listen on")
	flag.StringVar(&catalogDir, "catalog-dir", "./catalog", "directory of package files")
	flag.StringVar(&gameVersion, "game-version", "", "only offer versions compatible with this game version")
	flag.StringVar(&pins, "pins", "", "comma-separated uid=version pins")

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	log := ctrl.Log.WithName("selector-server")

	index, err := catalog.LoadDir(catalogDir)
	if err != nil {
		log.Error(err, "unable to load catalog", "dir", catalogDir)
		os.Exit(1)
	}

	var sel selector.Selector = selector.Highest{Index: index, Compat: gameVersion}
	pinned, err := parsePins(pins)
	if err != nil {
		log.Error(err, "invalid --pins")
		os.Exit(1)
	}
	if len(pinned) > 0 {
		sel = selector.Pinned{Pins: pinned, Fallback: sel}
	}

	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		log.Error(err, "listen", "addr", listenAddr)
		os.Exit(1)
	}

	grpcServer := grpc.NewServer()
	selector.Register(grpcServer, sel, log)

	log.Info("serving version selector", "addr", lis.Addr().String(), "packages", len(index.UIDs()), "pins", len(pinned))
	go func() {
		<-ctrl.SetupSignalHandler().Done()
		grpcServer.GracefulStop()
	}()
	if err := grpcServer.Serve(lis); err != nil {
		log.Error(err, "grpc serve")
		os.Exit(1)
	}
}

func parsePins(raw string) (map[mod.PackageID]mod.VersionTag, error) {
	out := map[mod.PackageID]mod.VersionTag{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		uid, tag, ok := strings.Cut(item, "=")
		if !ok || uid == "" || tag == "" {
			return nil, fmt.Errorf("pin %q: want uid=version", item)
		}
		out[mod.PackageID(uid)] = mod.VersionTag(tag)
	}
	return out, nil
}
