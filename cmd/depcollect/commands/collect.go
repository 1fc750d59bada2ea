// cmd/depcollect/commands/collect.go
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artifactgraph/depcollect/cache"
	"github.com/artifactgraph/depcollect/cmd/depcollect/output"
	"github.com/artifactgraph/depcollect/collect"
	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/artifactgraph/depcollect/descriptor"
	"github.com/artifactgraph/depcollect/graph"
	"github.com/artifactgraph/depcollect/repository"
	"github.com/artifactgraph/depcollect/transport"
	"github.com/artifactgraph/depcollect/version"
)

type collectOptions struct {
	Repositories          []string
	Managed               []string
	LocalRepo             string
	FailOnDescriptorError bool
}

// NewCollectCommand creates the "collect" command: walks the dependency
// graph rooted at one or more groupId:artifactId:version coordinates and
// prints it, plus a summary of exceptions and cycles. Grounded on
// cmd/gonuget/commands/restore.go's options-struct-plus-RunE shape.
func NewCollectCommand(console *output.Console) *cobra.Command {
	opts := &collectOptions{}

	cmd := &cobra.Command{
		Use:   "collect <groupId:artifactId:version>...",
		Short: "Collect a Maven-style dependency graph",
		Long: `Walks the dependency tree rooted at one or more coordinates, applying
dependency management, version-range resolution and relocation-following,
and prints the resulting graph.

Examples:
  depcollect collect com.example:widget:1.2.0
  depcollect collect com.example:widget:1.2.0 com.example:gadget:2.0.0
  depcollect collect com.example:widget:1.2.0 --repository https://repo.maven.apache.org/maven2
  depcollect collect com.example:widget:1.2.0 --local ./offline-repo`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, args, opts, console)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Repositories, "repository", "r", nil, "Repository URL(s) to resolve against")
	cmd.Flags().StringSliceVarP(&opts.Managed, "managed", "m", nil, "Managed dependency groupId:artifactId:version, repeatable")
	cmd.Flags().StringVar(&opts.LocalRepo, "local", "", "Read descriptors from a local Maven2-layout directory instead of the network")
	cmd.Flags().BoolVar(&opts.FailOnDescriptorError, "fail-on-descriptor-error", false, "Escalate any descriptor fetch failure to a command error")

	return cmd
}

func runCollect(cmd *cobra.Command, args []string, opts *collectOptions, console *output.Console) error {
	roots := make([]coordinate.Dependency, 0, len(args))
	for _, arg := range args {
		c, err := parseCoordinate(arg)
		if err != nil {
			return err
		}
		roots = append(roots, coordinate.Dependency{Coordinate: c, Scope: "compile"})
	}

	managed := make([]coordinate.Dependency, 0, len(opts.Managed))
	for _, arg := range opts.Managed {
		c, err := parseCoordinate(arg)
		if err != nil {
			return fmt.Errorf("--managed %q: %w", arg, err)
		}
		managed = append(managed, coordinate.Dependency{Coordinate: c})
	}

	reader, rangeResolver, repos, err := buildCollaborators(opts)
	if err != nil {
		return err
	}

	collector := collect.NewCollector(reader, rangeResolver, repository.NewDefaultMerger())

	session := collect.NewSession()
	session.FailOnDescriptorError = opts.FailOnDescriptorError
	session.Verbose = console.GetVerbosity() >= output.VerbosityDetailed

	req := collect.CollectRequest{
		ManagedDependencies: managed,
		Repositories:        repos,
	}
	if len(roots) == 1 {
		req.Root = roots[0]
	} else {
		req.Roots = roots
	}

	result, err := collector.Collect(cmd.Context(), session, req)
	if result != nil && result.Root != nil {
		console.Println(strings.TrimRight((&graph.Graph{Root: result.Root}).Render(), "\n"))
	}
	for _, exception := range result.Exceptions {
		console.Warning("%s", exception.Error())
	}
	for _, cyc := range result.Cycles {
		console.Detail("cycle: %s", cyc.Description)
	}

	if err != nil {
		return err
	}

	console.Success("collected %d exception(s), %d cycle(s)", len(result.Exceptions), len(result.Cycles))
	return nil
}

func buildCollaborators(opts *collectOptions) (descriptor.Reader, version.RangeResolver, []repository.Repository, error) {
	if opts.LocalRepo != "" {
		reader := descriptor.NewLocalReader(opts.LocalRepo)
		resolver := version.NewDefaultRangeResolver(descriptor.NewLocalAvailableVersions(opts.LocalRepo))
		repos := []repository.Repository{{ID: "local", URL: opts.LocalRepo, Layout: "default"}}
		return reader, resolver, repos, nil
	}

	urls := opts.Repositories
	if len(urls) == 0 {
		urls = []string{"https://repo.maven.apache.org/maven2"}
	}

	repos := make([]repository.Repository, 0, len(urls))
	transporters := make(map[string]transport.Transporter, len(urls))
	client := transport.NewClient(transport.DefaultConfig())
	for i, url := range urls {
		id := fmt.Sprintf("repo%d", i)
		repos = append(repos, repository.Repository{ID: id, URL: url, Layout: "default"})
		transporters[id] = transport.NewHTTPTransporter(url, client)
	}

	diskCache, err := cache.NewDiskCache(filepath.Join(os.TempDir(), "depcollect-cache"), 256<<20)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open descriptor cache: %w", err)
	}
	mtCache := cache.NewMultiTierCache(cache.NewMemoryCache(1024, 64<<20), diskCache)
	reader := descriptor.NewHTTPReader(transporters, mtCache, nil)
	resolver := version.NewDefaultRangeResolver(descriptor.NewAvailableVersions(repos, transporters))
	return reader, resolver, repos, nil
}

// parseCoordinate parses "groupId:artifactId:version",
// "groupId:artifactId:extension:version" or
// "groupId:artifactId:extension:classifier:version" into a Coordinate.
func parseCoordinate(s string) (coordinate.Coordinate, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		return coordinate.New(parts[0], parts[1], parts[2]), nil
	case 4:
		return coordinate.New(parts[0], parts[1], parts[3]).WithExtension(parts[2]), nil
	case 5:
		return coordinate.New(parts[0], parts[1], parts[4]).WithExtension(parts[2]).WithClassifier(parts[3]), nil
	default:
		return coordinate.Coordinate{}, fmt.Errorf("invalid coordinate %q: expected groupId:artifactId:version", s)
	}
}
