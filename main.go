package main

import (
	"context"
	"flag"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	modsv1alpha1 "github.com/bayleafwalker/modbinder/api/v1alpha1"
	"github.com/bayleafwalker/modbinder/controllers"
	"github.com/bayleafwalker/modbinder/internal/catalog"
	"github.com/bayleafwalker/modbinder/internal/graph"
	"github.com/bayleafwalker/modbinder/internal/publish"
	"github.com/bayleafwalker/modbinder/internal/resolver"
	"github.com/bayleafwalker/modbinder/internal/selector"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(modsv1alpha1.AddToScheme(scheme))
}

func main() {
	var metricsAddr string
	var probeAddr string
	var enableLeaderElection bool
	var catalogDir string
	var selectorAddr string
	var natsURL string
	var natsSubject string
	var softEdges string

	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false, "Enable leader election for controller manager.")
	flag.StringVar(&catalogDir, "catalog-dir", "/etc/modbinder/catalog", "Directory of package files loaded into the catalog.")
	flag.StringVar(&selectorAddr, "selector-addr", "", "Optional gRPC address of a remote version selector.")
	flag.StringVar(&natsURL, "nats-url", "", "Optional NATS URL; resolution events are published when set.")
	flag.StringVar(&natsSubject, "nats-subject", "modbinder.events", "Subject prefix for published resolution events.")
	flag.StringVar(&softEdges, "soft-edges", "Exclude", "Default soft dependency policy (Exclude or Include) for instances that do not set one.")

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	softPolicy, err := graph.ParseSoftEdgePolicy(softEdges)
	if err != nil {
		setupLog.Error(err, "invalid --soft-edges")
		os.Exit(1)
	}

	index, err := catalog.LoadDir(catalogDir)
	if err != nil {
		setupLog.Error(err, "unable to load catalog", "dir", catalogDir)
		os.Exit(1)
	}
	setupLog.Info("catalog loaded", "dir", catalogDir, "packages", len(index.UIDs()))

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: metricsAddr},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "modinstance.mods.bindery.platform",
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	reconciler := &controllers.ModInstanceReconciler{
		Client:   mgr.GetClient(),
		Scheme:   mgr.GetScheme(),
		Recorder: mgr.GetEventRecorderFor("ModInstance"),
		Index:    index,

		DefaultSoftEdges: softPolicy,
	}

	if selectorAddr != "" {
		conn, err := grpc.NewClient(selectorAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			setupLog.Error(err, "unable to dial version selector", "addr", selectorAddr)
			os.Exit(1)
		}
		defer conn.Close()
		reconciler.Selector = selector.NewRemote(conn)
		setupLog.Info("using remote version selector", "addr", selectorAddr)
	}

	if natsURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pub, err := publish.NewNATSPublisher(ctx, natsURL, "modbinder-manager")
		cancel()
		if err != nil {
			setupLog.Error(err, "unable to connect to nats", "url", natsURL)
			os.Exit(1)
		}
		defer pub.Close()
		sink := &publish.EventSink{Publisher: pub, Subject: natsSubject, Log: ctrl.Log.WithName("publish")}
		reconciler.Sinks = func(key types.NamespacedName) []resolver.EventSink {
			return []resolver.EventSink{sink.ForInstance(key.String())}
		}
		setupLog.Info("publishing resolution events", "url", natsURL, "subject", natsSubject)
	}

	if err := reconciler.SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "ModInstance")
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}
