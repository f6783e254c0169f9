// Package scenario loads Lua combat scripts and replays them against a
// real combat session.
package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/samdwyer/wildgates/internal/combat"
)

const scenarioTypeName = "scenario"

// Step kinds recorded by the DSL.
const (
	StepSeed     = "seed"
	StepAttacker = "attacker"
	StepOpponent = "opponent"
	StepIntent   = "intent"
	StepAdvance  = "advance"
	StepExpect   = "expect"
)

// Scenario is a named list of steps built by a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one recorded DSL call.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadFile runs a Lua script from disk and returns the Scenario it builds.
// A script without a name is named after its file.
func LoadFile(path string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadString runs Lua source and returns the Scenario it builds.
func LoadString(source string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return runChunk(state)
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerScenarioType(state)
	registerScenarioConstructor(state)
	return state
}

func runChunk(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "seed", Function: scenarioSeed},
	{Name: "attacker", Function: scenarioAttacker},
	{Name: "opponent", Function: scenarioOpponent},
	{Name: "intent", Function: scenarioIntent},
	{Name: "advance", Function: scenarioAdvance},
	{Name: "expect", Function: scenarioExpect},
}

func scenarioSeed(state *lua.State) int {
	scenario := checkScenario(state)
	seed := lua.CheckInteger(state, 2)
	appendStep(scenario, StepSeed, map[string]any{"seed": seed})
	return 0
}

func scenarioAttacker(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, StepAttacker, optionalTable(state, 2))
	return 0
}

func scenarioOpponent(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, StepOpponent, optionalTable(state, 2))
	return 0
}

func scenarioIntent(state *lua.State) int {
	scenario := checkScenario(state)
	text := lua.CheckString(state, 2)
	if _, err := combat.ParseIntent(text); err != nil {
		lua.ArgumentError(state, 2, err.Error())
		return 0
	}
	appendStep(scenario, StepIntent, map[string]any{"intent": text})
	return 0
}

func scenarioAdvance(state *lua.State) int {
	scenario := checkScenario(state)
	dt := lua.CheckNumber(state, 2)
	appendStep(scenario, StepAdvance, map[string]any{"dt": dt})
	return 0
}

func scenarioExpect(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, StepExpect, tableToMap(state, 2))
	return 0
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if scenario == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		switch state.TypeOf(-2) {
		case lua.TypeString:
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		case lua.TypeNumber:
			// Array entries are keyed by their 1-based position
			if key, ok := state.ToInteger(-2); ok {
				output[strconv.Itoa(key)] = luaToGo(state, -1)
			}
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToMap(state, index)
	default:
		return nil
	}
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
