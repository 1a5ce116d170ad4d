package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	"sigs.k8s.io/controller-runtime/pkg/client"

	modsv1alpha1 "github.com/bayleafwalker/modbinder/api/v1alpha1"
)

var (
	scheme = runtime.NewScheme()
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(modsv1alpha1.AddToScheme(scheme))
}

func main() {
	var kubeconfig string
	if home := homedir.HomeDir(); home != "" {
		kubeconfig = filepath.Join(home, ".kube", "config")
	} else {
		kubeconfig = os.Getenv("KUBECONFIG")
	}
	flag.StringVar(&kubeconfig, "kubeconfig", kubeconfig, "absolute path to the kubeconfig file")

	var numInstances int
	var namespace string
	var requested string
	var gameVersion string
	var timeout time.Duration

	flag.IntVar(&numInstances, "instances", 10, "Number of ModInstances to create")
	flag.StringVar(&namespace, "namespace", "default", "Namespace to create instances in")
	flag.StringVar(&requested, "requested", "notenoughitems", "Comma-separated package uids every instance requests")
	flag.StringVar(&gameVersion, "game-version", "", "spec.gameVersion for every instance")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for each instance")
	flag.Parse()

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		log.Fatalf("Error building kubeconfig: %v", err)
	}

	k8sClient, err := client.New(config, client.Options{Scheme: scheme})
	if err != nil {
		log.Fatalf("Error creating client: %v", err)
	}

	uids := strings.Split(requested, ",")
	fmt.Printf("Starting load test: %d instances in namespace %s requesting %v\n", numInstances, namespace, uids)

	var wg sync.WaitGroup
	start := time.Now()
	latencies := make(chan time.Duration, numInstances)
	phases := make(chan string, numInstances)

	for i := 0; i < numInstances; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("load-test-instance-%d-%d", time.Now().Unix(), id)

			instance := &modsv1alpha1.ModInstance{
				ObjectMeta: metav1.ObjectMeta{
					Name:      name,
					Namespace: namespace,
				},
				Spec: modsv1alpha1.ModInstanceSpec{
					GameVersion: gameVersion,
					Requested:   uids,
				},
			}

			createStart := time.Now()
			if err := k8sClient.Create(context.Background(), instance); err != nil {
				fmt.Printf("Error creating instance %s: %v\n", name, err)
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			for {
				select {
				case <-ctx.Done():
					fmt.Printf("Timeout waiting for instance %s\n", name)
					return
				case <-time.After(500 * time.Millisecond):
					var current modsv1alpha1.ModInstance
					if err := k8sClient.Get(ctx, client.ObjectKey{Name: name, Namespace: namespace}, &current); err != nil {
						continue
					}
					if current.Status.ObservedGeneration < current.Generation || current.Status.Phase == "" {
						continue
					}
					latency := time.Since(createStart)
					latencies <- latency
					phases <- current.Status.Phase
					fmt.Printf("Instance %s reached %s in %v\n", name, current.Status.Phase, latency)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(latencies)
	close(phases)
	totalDuration := time.Since(start)

	var all []time.Duration
	for l := range latencies {
		all = append(all, l)
	}
	byPhase := map[string]int{}
	for p := range phases {
		byPhase[p]++
	}

	if len(all) == 0 {
		fmt.Printf("Load test completed in %v. No instances were reconciled.\n", totalDuration)
		return
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	var total time.Duration
	for _, l := range all {
		total += l
	}
	fmt.Printf("Load test completed in %v. reconciled=%d avg=%v p50=%v max=%v phases=%v\n",
		totalDuration, len(all), total/time.Duration(len(all)), all[len(all)/2], all[len(all)-1], byPhase)
}
