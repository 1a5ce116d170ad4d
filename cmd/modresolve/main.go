package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"k8s.io/apimachinery/pkg/util/sets"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/yaml"

	modsv1alpha1 "github.com/bayleafwalker/modbinder/api/v1alpha1"
	"github.com/bayleafwalker/modbinder/internal/catalog"
	"github.com/bayleafwalker/modbinder/internal/graph"
	"github.com/bayleafwalker/modbinder/internal/mod"
	"github.com/bayleafwalker/modbinder/internal/resolver"
	"github.com/bayleafwalker/modbinder/internal/selector"
)

type options struct {
	catalogDir   string
	instancePath string
	gameVersion  string
	remove       string
	timeout      time.Duration
}

func main() {
	var o options
	var selectorAddr string
	flag.StringVar(&o.catalogDir, "catalog", "./catalog", "directory of package files")
	flag.StringVar(&o.instancePath, "instance", "instance.yaml", "ModInstance manifest to resolve")
	flag.StringVar(&selectorAddr, "selector-addr", "", "optional gRPC version selector; defaults to highest compatible version")
	flag.StringVar(&o.gameVersion, "game-version", "", "override spec.gameVersion")
	flag.StringVar(&o.remove, "remove", "", "comma-separated uids; print every installed package that depends on them")
	flag.DurationVar(&o.timeout, "timeout", 30*time.Second, "overall resolution timeout")

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	log := ctrl.Log.WithName("modresolve")

	var sel selector.Selector
	if selectorAddr != "" {
		conn, err := grpc.NewClient(selectorAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			log.Error(err, "dial selector", "addr", selectorAddr)
			os.Exit(1)
		}
		defer conn.Close()
		sel = selector.NewRemote(conn)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	ctx = logr.NewContext(ctx, log)

	if err := run(ctx, o, sel, os.Stdout); err != nil {
		log.Error(err, "resolution failed")
		cancel()
		os.Exit(1)
	}
}

// run resolves the instance file against the catalog and writes a report to out.
// A nil sel picks the highest compatible version, honoring spec.pins.
func run(ctx context.Context, o options, sel selector.Selector, out io.Writer) error {
	index, err := catalog.LoadDir(o.catalogDir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	instance, err := readInstance(o.instancePath)
	if err != nil {
		return err
	}
	if o.gameVersion != "" {
		instance.Spec.GameVersion = o.gameVersion
	}
	policy, err := graph.ParseSoftEdgePolicy(string(instance.Spec.SoftDependencies))
	if err != nil {
		return err
	}

	if sel == nil {
		sel = selector.Highest{Index: index, Compat: instance.Spec.GameVersion}
	}
	if pins := instance.Spec.PinnedTags(); len(pins) > 0 {
		sel = selector.Pinned{Pins: pins, Fallback: sel}
	}

	res := &resolver.DefaultResolver{
		Index:     index,
		Selector:  sel,
		Installed: instance.Spec.Snapshot(),
		Events:    resolver.LogSink{Log: logr.FromContextOrDiscard(ctx)},
		Graph:     graph.Options{SoftEdges: policy},
	}
	plan, err := res.Resolve(ctx, instance.Spec.RequestedIDs())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SELECTED\tVERSION\tFILE")
	for _, ref := range plan.Selection.Refs() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ref.UID, ref.Tag, plan.Selection[ref.UID].FileName())
	}
	if len(plan.Diagnostics.Unresolved) > 0 {
		fmt.Fprintln(w, "\nUNRESOLVED\tFROM\tREASON")
		for _, d := range plan.Diagnostics.Unresolved {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.To, d.From, d.Reason)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	g, consistent := res.InstalledGraph()
	if !consistent {
		fmt.Fprintln(out, "\ninstalled graph is inconsistent; orphans not computed:")
		for _, p := range g.Problems() {
			fmt.Fprintf(out, "  %s\n", p)
		}
	} else {
		orphans, err := res.OrphansIn(g)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\norphans: %s\n", joinIDs(orphans))
	}

	for _, u := range catalog.UpdatesFor(index, instance.Spec.Snapshot(), instance.Spec.GameVersion) {
		fmt.Fprintf(out, "update available: %s %s -> %s\n", u.UID, u.Installed, u.Latest)
	}

	if o.remove != "" {
		var targets []mod.PackageID
		for _, uid := range strings.Split(o.remove, ",") {
			if uid = strings.TrimSpace(uid); uid != "" {
				targets = append(targets, mod.PackageID(uid))
			}
		}
		affected, err := g.Ancestors(targets...)
		if err != nil {
			return fmt.Errorf("--remove: %w", err)
		}
		fmt.Fprintf(out, "removing %s also removes: %s\n", joinIDs(targets), joinIDs(sets.List(affected)))
	}
	return nil
}

func readInstance(path string) (*modsv1alpha1.ModInstance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instance: %w", err)
	}
	var instance modsv1alpha1.ModInstance
	if err := yaml.UnmarshalStrict(data, &instance); err != nil {
		return nil, fmt.Errorf("parse instance %s: %w", path, err)
	}
	return &instance, nil
}
