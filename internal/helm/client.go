// Package helm wraps the Helm SDK for chart-backed pipeline stages.
package helm

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/storage/driver"
)

// Release identifies an installed chart for install and teardown.
type Release struct {
	Namespace   string
	Name        string
	RepoURL     string
	Chart       string
	Version     string
	Values      map[string]interface{}
	WaitTimeout time.Duration
}

// Client handles Helm operations against a cluster reachable through a
// kubeconfig.
type Client struct {
	kubeconfig []byte
	settings   *cli.EnvSettings
}

// NewClient creates a Helm client for the given kubeconfig bytes.
func NewClient(kubeconfig []byte) *Client {
	return &Client{
		kubeconfig: kubeconfig,
		settings:   cli.New(),
	}
}

// InstallOrUpgrade installs the release, or upgrades it when it already
// exists, making the operation safe to re-run.
func (c *Client) InstallOrUpgrade(rel Release) error {
	actionConfig, err := c.actionConfig(rel.Namespace)
	if err != nil {
		return err
	}

	cp := &action.ChartPathOptions{RepoURL: rel.RepoURL, Version: rel.Version}
	chartPath, err := cp.LocateChart(rel.Chart, c.settings)
	if err != nil {
		return fmt.Errorf("failed to locate chart %s: %w", rel.Chart, err)
	}

	chart, err := loader.Load(chartPath)
	if err != nil {
		return fmt.Errorf("failed to load chart %s: %w", rel.Chart, err)
	}

	timeout := rel.WaitTimeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	histClient := action.NewHistory(actionConfig)
	histClient.Max = 1
	if _, err := histClient.Run(rel.Name); err == nil {
		upgrade := action.NewUpgrade(actionConfig)
		upgrade.Namespace = rel.Namespace
		upgrade.Timeout = timeout
		if _, err := upgrade.Run(rel.Name, chart, rel.Values); err != nil {
			return fmt.Errorf("helm upgrade %s failed: %w", rel.Name, err)
		}
		return nil
	}

	install := action.NewInstall(actionConfig)
	install.Namespace = rel.Namespace
	install.ReleaseName = rel.Name
	install.CreateNamespace = true
	install.Timeout = timeout
	if _, err := install.Run(chart, rel.Values); err != nil {
		return fmt.Errorf("helm install %s failed: %w", rel.Name, err)
	}
	return nil
}

// Uninstall removes the release. Uninstalling an absent release is success.
func (c *Client) Uninstall(namespace, name string) error {
	actionConfig, err := c.actionConfig(namespace)
	if err != nil {
		return err
	}

	uninstall := action.NewUninstall(actionConfig)
	if _, err := uninstall.Run(name); err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) {
			return nil
		}
		return fmt.Errorf("helm uninstall %s failed: %w", name, err)
	}
	return nil
}

func (c *Client) actionConfig(namespace string) (*action.Configuration, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(c.kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create rest config: %w", err)
	}

	actionConfig := new(action.Configuration)
	clientGetter := &genericRESTClientGetter{config: restConfig, namespace: namespace}
	if err := actionConfig.Init(clientGetter, namespace, os.Getenv("HELM_DRIVER"), log.Printf); err != nil {
		return nil, fmt.Errorf("failed to init action config: %w", err)
	}
	return actionConfig, nil
}

// genericRESTClientGetter implements basic RESTClientGetter for Helm.
type genericRESTClientGetter struct {
	config    *rest.Config
	namespace string
}

func (g *genericRESTClientGetter) ToRESTConfig() (*rest.Config, error) {
	return g.config, nil
}

func (g *genericRESTClientGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	discoveryClient, err := discovery.NewDiscoveryClientForConfig(g.config)
	if err != nil {
		return nil, err
	}
	return memory.NewMemCacheClient(discoveryClient), nil
}

func (g *genericRESTClientGetter) ToRESTMapper() (meta.RESTMapper, error) {
	discoveryClient, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}
	return restmapper.NewDeferredDiscoveryRESTMapper(discoveryClient), nil
}

func (g *genericRESTClientGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	return clientcmd.NewDefaultClientConfig(*clientcmdapi.NewConfig(), &clientcmd.ConfigOverrides{})
}
