// Package collect implements the Collector (spec.md §4.1): the traversal
// that turns a CollectRequest into a dependency Graph, reading descriptors,
// applying dependency management, resolving version ranges, and merging
// repositories along the way.
//
// Grounded on core/resolver/walker.go's stack-based traversal, adapted to be
// strictly single-threaded per spec.md §5 — the teacher fans each node's
// dependency fetches out to a goroutine per child; this Collector walks one
// child at a time and never starts a goroutine of its own.
package collect

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/artifactgraph/depcollect/descriptor"
	"github.com/artifactgraph/depcollect/graph"
	"github.com/artifactgraph/depcollect/manage"
	"github.com/artifactgraph/depcollect/repository"
	"github.com/artifactgraph/depcollect/telemetry"
	"github.com/artifactgraph/depcollect/version"
)

// Session carries the per-call policy the Collector consults: verbosity,
// whether descriptor errors escalate to a thrown error, and which scopes to
// prune at depth > 0 (spec.md §4.1 step 4).
type Session struct {
	ID                    string
	Verbose               bool
	FailOnDescriptorError bool
	IgnoredScopes         map[string]struct{}
	Logger                telemetry.Logger
}

// NewSession returns a Session with a fresh request id, accumulate-errors
// policy, and a null logger — the safer default for a library (DESIGN.md
// Open Question decision 3).
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), Logger: telemetry.NewNullLogger()}
}

func (s *Session) ignoresScope(scope string) bool {
	if s == nil || scope == "" {
		return false
	}
	_, ok := s.IgnoredScopes[scope]
	return ok
}

func (s *Session) verbose() bool { return s != nil && s.Verbose }

func (s *Session) logger() telemetry.Logger {
	if s == nil || s.Logger == nil {
		return telemetry.NewNullLogger()
	}
	return s.Logger
}

// CollectRequest is the Collector's public request (spec.md §6). Exactly one
// of Root or Roots should be set; Roots takes precedence, selecting
// cross-linked multi-root mode even when it holds a single entry.
type CollectRequest struct {
	Root                coordinate.Dependency
	Roots               []coordinate.Dependency
	ManagedDependencies []coordinate.Dependency
	Repositories        []repository.Repository
	RequestContext      map[string]string
}

func (r CollectRequest) isMultiRoot() bool { return r.Roots != nil }

func (r CollectRequest) effectiveRoots() []coordinate.Dependency {
	if r.Roots != nil {
		return r.Roots
	}
	if r.Root.Coordinate.GroupID == "" && r.Root.Coordinate.ArtifactID == "" {
		return nil
	}
	return []coordinate.Dependency{r.Root}
}

// CycleReport describes one cycle node found on the finished graph
// (SPEC_FULL §12.2); populated by CycleAnalyzer, not by Collect itself.
type CycleReport struct {
	PackageID   coordinate.PathKey
	PathToSelf  []coordinate.PathKey
	Depth       int
	Description string
}

// CollectResult is the Collector's public result (spec.md §6).
type CollectResult struct {
	Root       *graph.Node
	Exceptions []*CollectionError
	Cycles     []CycleReport
	Request    CollectRequest
}

// Collector turns a CollectRequest into a Graph by reading descriptors and
// resolving version ranges along an iterative, single-threaded traversal.
type Collector struct {
	Reader        descriptor.Reader
	RangeResolver version.RangeResolver
	Merger        repository.Merger
	Manager       manage.Manager // session-level manager, e.g. manage.NewClassicManager(request.ManagedDependencies)

	// Versions, if set, enriches a VERSION_RESOLUTION_ERROR's message with
	// diagnoseUnresolved (SPEC_FULL §12.3). Optional.
	Versions version.AvailableVersions
}

// NewCollector builds a Collector from its three external collaborators
// (spec.md §6). It leaves Manager nil; while Manager is nil, Collect seeds
// each call with manage.NewClassicManager(req.ManagedDependencies) built from
// that call's own request.
func NewCollector(reader descriptor.Reader, rangeResolver version.RangeResolver, merger repository.Merger) *Collector {
	return &Collector{Reader: reader, RangeResolver: rangeResolver, Merger: merger}
}

// frame is one entry of the Collector's explicit work stack, per spec.md
// §4.1: "(parentNode, remainingChildren, pathManager, pathRepositories,
// pathCoordinates)". index tracks how far through children this frame has
// progressed; pathExclusions is the accumulated ancestor exclusion set
// (step 3), not named in the spec's frame tuple but required by it.
type frame struct {
	parent           *graph.Node
	children         []coordinate.Dependency
	index            int
	depth            int
	pathManager      manage.Manager
	pathRepositories []repository.Repository
	pathCoordinates  graph.PathSet
	pathExclusions   []coordinate.Exclusion
	requestContext   map[string]string
	isRootFrame      bool // children here are declared roots, not transitive deps

	// crossLinkRoots is set only on the virtual multi-root frame: the full
	// declared-roots list, used to attach every *other* root as a direct
	// dependency of the root currently being processed (spec.md §4.1,
	// "List of root Dependencies").
	crossLinkRoots []coordinate.Dependency
}

// Collect runs the traversal described in spec.md §4.1 and returns the
// resulting graph plus every accumulated exception. It returns a non-nil
// error only when no root could be processed at all (COLLECTION_FAILED),
// the session's cancellation fires (COLLECTION_CANCELLED), or
// session.FailOnDescriptorError escalates a DESCRIPTOR_ERROR — in every
// case the partial CollectResult is still returned alongside the error.
func (c *Collector) Collect(ctx context.Context, session *Session, req CollectRequest) (*CollectResult, error) {
	log := session.logger()
	roots := req.effectiveRoots()
	if len(roots) == 0 {
		result := &CollectResult{Request: req}
		err := newError(CodeFailed, coordinate.Coordinate{}, errors.New("no root dependency supplied"))
		result.Exceptions = append(result.Exceptions, err)
		return result, err
	}

	seedManager := c.Manager
	if seedManager == nil {
		seedManager = manage.NewClassicManager(req.ManagedDependencies)
	}

	virtualRoot := &graph.Node{}
	virtualFrame := frame{
		parent:           virtualRoot,
		children:         roots,
		depth:            0,
		pathManager:      seedManager,
		pathRepositories: req.Repositories,
		pathCoordinates:  graph.NewPathSet(),
		requestContext:   req.RequestContext,
		isRootFrame:      true,
	}
	multiRoot := req.isMultiRoot()
	if multiRoot {
		virtualFrame.crossLinkRoots = roots
	}
	stack := []frame{virtualFrame}

	// In multi-root mode the result's root really is the artificial null
	// node (spec.md §4.1: "the result's root Node has a null Dependency").
	// In single-root mode the virtual wrapper above is discarded once the
	// one actual root Node exists; result.Root is filled in below.
	result := &CollectResult{Request: req}
	if multiRoot {
		result.Root = virtualRoot
	}
	processedAnyRoot := false

	for len(stack) > 0 {
		top := len(stack) - 1
		f := &stack[top]

		if f.index >= len(f.children) {
			stack = stack[:top]
			continue
		}

		select {
		case <-ctx.Done():
			err := newError(CodeCancelled, coordinate.Coordinate{}, ctx.Err())
			result.Exceptions = append(result.Exceptions, err)
			return result, err
		default:
		}

		d := f.children[f.index]
		idx := f.index
		f.index++

		isDeclaredRoot := f.isRootFrame
		childFrame, exception := c.processChild(ctx, session, f, d, isDeclaredRoot)

		if exception != nil {
			result.Exceptions = append(result.Exceptions, exception)
			log.WarnContext(ctx, "collection exception {Code} for {Coordinate}", string(exception.Code), exception.Coordinate.String())
		}

		if isDeclaredRoot && !multiRoot && childFrame != nil {
			result.Root = childFrame.parent
		}

		if exception != nil && exception.Code == CodeDescriptorError && session != nil && session.FailOnDescriptorError {
			return result, exception
		}
		if childFrame == nil {
			// Excluded, filtered, or a terminal cycle leaf — no further
			// traversal from this child.
			continue
		}

		if isDeclaredRoot {
			processedAnyRoot = true
			if multiRoot {
				// Cross-link: every other declared root becomes a direct
				// dependency of this root too (spec.md §4.1).
				for i, other := range f.crossLinkRoots {
					if i != idx {
						childFrame.children = append(childFrame.children, other)
					}
				}
			}
		}

		log.DebugContext(ctx, "visited node {Coordinate}", childFrame.parent.Dependency.Coordinate.String())
		telemetry.CollectNodesTotal.WithLabelValues("resolved").Inc()

		if len(childFrame.children) > 0 {
			stack = append(stack, *childFrame)
		}
	}

	if !processedAnyRoot {
		err := newError(CodeFailed, coordinate.Coordinate{}, errors.New("no root could be processed"))
		result.Exceptions = append(result.Exceptions, err)
		return result, err
	}

	if result.Root != nil {
		result.Cycles = CycleAnalyzer{}.Analyze(&graph.Graph{Root: result.Root})
	}

	log.InfoContext(ctx, "collection finished with {Exceptions} exceptions, {Cycles} cycles",
		len(result.Exceptions), len(result.Cycles))
	return result, nil
}

// processChild runs spec.md §4.1 steps 1-10 for one child Dependency of
// frame f, returning the frame to push for its own children (nil if no
// node was created, or if a cycle leaf was created with no children to
// walk) and a CollectionError if this subtree was pruned by a failure.
// For a declared root, or for any node whose descriptor is simply missing
// (404, absent locally), a descriptor-fetch failure does NOT prune the node
// — the node is still created with an empty descriptor and the exception
// returned alongside it, matching the engine's contract that a Node always
// carries its Dependency even when its descriptor read failed, and that a
// missing descriptor is recorded exactly once rather than silently ignored.
func (c *Collector) processChild(ctx context.Context, session *Session, f *frame, d coordinate.Dependency, isDeclaredRoot bool) (*frame, *CollectionError) {
	// Step 1: manage.
	management := f.pathManager.Manage(d)
	managed, premanaged := manage.Apply(d, management, session.verbose())

	key := managed.Coordinate.Key()

	// Step 2: cycle check.
	if f.pathCoordinates.Contains(key) {
		node := &graph.Node{Dependency: &managed, Cycle: true}
		f.parent.Children = append(f.parent.Children, node)
		telemetry.CollectNodesTotal.WithLabelValues("cycle").Inc()
		return nil, nil
	}

	// Step 3: exclusion check (never applies to a declared root; there is
	// no ancestor dependency to exclude it).
	if !isDeclaredRoot && coordinate.ExcludedBy(f.pathExclusions, managed.Coordinate) {
		telemetry.CollectNodesTotal.WithLabelValues("excluded").Inc()
		return nil, nil
	}

	// Step 4: optional/scope filter (roots are exempt).
	if !isDeclaredRoot {
		if managed.IsOptional() {
			telemetry.CollectNodesTotal.WithLabelValues("excluded").Inc()
			return nil, nil
		}
		if session.ignoresScope(managed.Scope) {
			telemetry.CollectNodesTotal.WithLabelValues("excluded").Inc()
			return nil, nil
		}
	}

	// Step 5: version range resolution.
	rangeResult, err := c.RangeResolver.Resolve(ctx, version.RangeResolveRequest{
		GroupID:      managed.Coordinate.GroupID,
		ArtifactID:   managed.Coordinate.ArtifactID,
		Constraint:   managed.Coordinate.Version,
		Repositories: repository.URLs(f.pathRepositories),
	})
	if err != nil {
		return nil, newError(CodeVersionResolutionError, managed.Coordinate, err)
	}
	selected := rangeResult.Last()
	if selected == nil {
		msg := diagnoseUnresolved(ctx, c.Versions, managed.Coordinate, f.pathRepositories)
		return nil, newError(CodeVersionResolutionError, managed.Coordinate, errors.New(msg))
	}
	resolvedCoordinate := managed.Coordinate.WithVersion(selected.String())

	// Step 6: descriptor fetch, following relocations.
	readResult, err := descriptor.FollowRelocations(ctx, c.Reader, descriptor.ReadRequest{
		Coordinate:     resolvedCoordinate,
		Repositories:   f.pathRepositories,
		RequestContext: f.requestContext,
	})
	var desc descriptor.Descriptor
	finalCoordinate := resolvedCoordinate
	var descriptorException *CollectionError
	if err != nil {
		if errors.Is(err, descriptor.ErrRelocationLoop) {
			return nil, newError(CodeRelocationLoop, resolvedCoordinate, err)
		}
		switch {
		case descriptor.IsMissing(err):
			// A missing descriptor still yields a leaf node with an empty
			// descriptor (spec.md §8 invariant 5: it must appear in
			// result.exceptions exactly once per distinct Coordinate
			// attempted, root or non-root alike).
			descriptorException = newError(CodeDescriptorError, resolvedCoordinate, err)
		case isDeclaredRoot:
			descriptorException = newError(CodeDescriptorError, resolvedCoordinate, err)
		default:
			return nil, newError(CodeDescriptorError, resolvedCoordinate, err)
		}
	} else {
		desc = readResult.Descriptor
		finalCoordinate = readResult.FullyExpandedCoordinate
	}
	finalDependency := managed.WithCoordinate(finalCoordinate)

	// Step 7: repository merge.
	mergedRepositories := c.Merger.Merge(f.pathRepositories, desc.Repositories)

	// Step 8: node creation.
	versions := make([]string, len(rangeResult.OrderedVersions))
	for i, v := range rangeResult.OrderedVersions {
		versions[i] = v.String()
	}
	bits := management.Bits
	if !session.verbose() {
		bits = 0
	}
	node := &graph.Node{
		Dependency:       &finalDependency,
		ResolvedVersions: versions,
		Repositories:     mergedRepositories,
		ManagedBits:      bits,
		Premanaged:       premanaged,
	}
	f.parent.Children = append(f.parent.Children, node)

	// Step 9: derive child manager.
	childManager := f.pathManager.DeriveFor(manage.DeriveContext{
		Current:             finalDependency,
		ManagedDependencies: desc.ManagedDependencies,
		Depth:               f.depth + 1,
	})

	// Step 10: push a frame for this node's own children.
	return &frame{
		parent:           node,
		children:         desc.Dependencies,
		depth:            f.depth + 1,
		pathManager:      childManager,
		pathRepositories: mergedRepositories,
		pathCoordinates:  f.pathCoordinates.Add(key),
		pathExclusions:   coordinate.MergeExclusions(f.pathExclusions, finalDependency.Exclusions),
		requestContext:   f.requestContext,
	}, descriptorException
}
