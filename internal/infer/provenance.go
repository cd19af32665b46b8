package infer

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/minio/highwayhash"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

func pred(iri string) rdf.Term { return rdf.IRI(iri) }

// HoistActivityTime moves each activity's start time onto the plans it executed
type HoistActivityTime struct{}

func (HoistActivityTime) Name() string      { return "hoist-activity-time" }
func (HoistActivityTime) Reads() []string   { return []string{vocab.StartedAtTime, vocab.HadPlan} }
func (HoistActivityTime) Removes() []string { return nil }

func (s HoistActivityTime) Apply(in *rdf.Graph, env *Env) (*rdf.Graph, error) {
	g := in.Clone()
	moved := 0
	for _, t := range g.Match(rdf.Any, pred(vocab.StartedAtTime), rdf.Any) {
		plans := g.Objects(t.S, pred(vocab.HadPlan))
		if len(plans) == 0 {
			continue
		}
		for _, plan := range plans {
			g.Add(rdf.T(plan, t.P, t.O))
		}
		g.Remove(t)
		moved++
	}
	env.Logger.Debug("hoisted activity times", "count", moved)
	return g, nil
}

// HarvestInputs adds the reverse isInputOf edge for every action input
type HarvestInputs struct{}

func (HarvestInputs) Name() string      { return "harvest-inputs" }
func (HarvestInputs) Reads() []string   { return []string{vocab.HasInputs} }
func (HarvestInputs) Removes() []string { return nil }

func (s HarvestInputs) Apply(in *rdf.Graph, env *Env) (*rdf.Graph, error) {
	g := in.Clone()
	for _, t := range g.Match(rdf.Any, pred(vocab.HasInputs), rdf.Any) {
		g.Add(rdf.T(t.O, pred(vocab.IsInputOf), t.S))
	}
	return g, nil
}

var outputTypes = map[string]string{
	"jpeg":  vocab.CommandOutputImage,
	"jpg":   vocab.CommandOutputImage,
	"png":   vocab.CommandOutputImage,
	"gif":   vocab.CommandOutputImage,
	"bmp":   vocab.CommandOutputImage,
	"fits":  vocab.CommandOutputFitsFile,
	"ipynb": vocab.CommandOutputNotebook,
	"ecsv":  vocab.CommandOutputEcsvFile,
}

// RetypeOutputs refines the type of outputs whose single default value has a
// known file extension. The hasOutputs edge is the only output relation.
type RetypeOutputs struct{}

func (RetypeOutputs) Name() string      { return "retype-outputs" }
func (RetypeOutputs) Reads() []string   { return []string{vocab.HasOutputs, vocab.DefaultValue, vocab.Type} }
func (RetypeOutputs) Removes() []string { return nil }

func (s RetypeOutputs) Apply(in *rdf.Graph, env *Env) (*rdf.Graph, error) {
	g := in.Clone()
	for _, t := range g.Match(rdf.Any, pred(vocab.HasOutputs), rdf.Any) {
		out := t.O
		values := g.Objects(out, pred(vocab.DefaultValue))
		if len(values) != 1 {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(values[0].Value), ".")
		refined, ok := outputTypes[ext]
		if !ok {
			continue
		}
		g.RemoveMatching(out, pred(vocab.Type), rdf.Any)
		g.Add(rdf.T(out, pred(vocab.Type), rdf.IRI(refined)))
	}
	return g, nil
}

// HarvestArguments collects (value, position) per action and strips the value
// from the original argument node
type HarvestArguments struct{}

func (HarvestArguments) Name() string      { return "harvest-arguments" }
func (HarvestArguments) Reads() []string   { return []string{vocab.HasArguments, vocab.Position, vocab.DefaultValue} }
func (HarvestArguments) Removes() []string { return nil }

func (s HarvestArguments) Apply(in *rdf.Graph, env *Env) (*rdf.Graph, error) {
	g := in.Clone()
	for _, t := range g.Match(rdf.Any, pred(vocab.HasArguments), rdf.Any) {
		action, arg := t.S, t.O
		values := g.Objects(arg, pred(vocab.DefaultValue))
		positions := g.Objects(arg, pred(vocab.Position))
		if len(values) != 1 || len(positions) != 1 {
			continue
		}
		pos, err := strconv.Atoi(strings.TrimSpace(positions[0].Value))
		if err != nil {
			env.Report(s.Name(), CodeBadPosition, "argument %s has non-integer position %q", arg.Value, positions[0].Value)
			continue
		}
		env.Arguments[action] = append(env.Arguments[action], ArgumentValue{Value: values[0].Value, Position: pos})
		g.Remove(rdf.T(arg, pred(vocab.DefaultValue), values[0]))
	}
	env.argumentsHarvested = true
	return g, nil
}

// SynthesizeParameters pairs each action's sorted arguments two by two into
// new CommandParameter nodes. A trailing odd argument is dropped.
type SynthesizeParameters struct{}

func (SynthesizeParameters) Name() string      { return "synthesize-parameters" }
func (SynthesizeParameters) Reads() []string   { return nil }
func (SynthesizeParameters) Removes() []string { return nil }

func (s SynthesizeParameters) Apply(in *rdf.Graph, env *Env) (*rdf.Graph, error) {
	if !env.argumentsHarvested {
		return nil, fmt.Errorf("%s: arguments were not harvested", s.Name())
	}
	g := in.Clone()
	actions := make([]rdf.Term, 0, len(env.Arguments))
	for a := range env.Arguments {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].String() < actions[j].String() })

	for _, action := range actions {
		args := append([]ArgumentValue(nil), env.Arguments[action]...)
		sort.SliceStable(args, func(i, j int) bool { return args[i].Position < args[j].Position })
		if len(args)%2 == 1 {
			env.Report(s.Name(), CodeOddArguments, "action %s has an odd argument count, dropping %q", action.Value, args[len(args)-1].Value)
		}
		for i := 0; i+1 < len(args); i += 2 {
			param, err := ParameterIRI(action, args[i].Value, args[i+1].Value)
			if err != nil {
				return nil, err
			}
			value := strings.TrimSpace(args[i].Value + " " + args[i+1].Value)
			g.Add(rdf.T(param, pred(vocab.Type), rdf.IRI(vocab.CommandParameter)))
			g.Add(rdf.T(param, pred(vocab.DefaultValue), rdf.Literal(value)))
			g.Add(rdf.T(param, pred(vocab.IsArgumentOf), action))
		}
	}
	return g, nil
}

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// ParameterIRI derives a stable node identity from the owning action and a
// pair of argument tokens
func ParameterIRI(action rdf.Term, first, second string) (rdf.Term, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return rdf.Term{}, err
	}
	h.Write([]byte(action.String()))
	h.Write([]byte{0})
	h.Write([]byte(first))
	h.Write([]byte{0})
	h.Write([]byte(second))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h.Sum64())
	return rdf.IRI(vocab.ParameterBase + hex.EncodeToString(buf[:])), nil
}

// IndexTypes records every typed node in the environment's type index
type IndexTypes struct{}

func (IndexTypes) Name() string      { return "index-types" }
func (IndexTypes) Reads() []string   { return []string{vocab.Type} }
func (IndexTypes) Removes() []string { return nil }

func (s IndexTypes) Apply(in *rdf.Graph, env *Env) (*rdf.Graph, error) {
	env.Types = BuildTypeIndex(in)
	env.Logger.Debug("indexed node types", "count", len(env.Types))
	return in.Clone(), nil
}
