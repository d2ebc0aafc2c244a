// Package shader compiles the ticket's GLSL program.
package shader

import (
	_ "embed"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

//go:embed glsl/ticket.vert
var TicketVertex string

//go:embed glsl/ticket.frag
var TicketFragment string

// Uniform names shared by the ticket shaders.
const (
	UniformModel      = "uModel"
	UniformView       = "uView"
	UniformProjection = "uProjection"
	UniformMap        = "uMap"
	UniformHasMap     = "uHasMap"
	UniformAmbient    = "uAmbient"
	UniformLightColor = "uLightColor"
	UniformLightDir   = "uLightDir"
	UniformRoughness  = "uRoughness"
	UniformMetalness  = "uMetalness"
)

// Uniforms lists every uniform the ticket program must expose.
var Uniforms = []string{
	UniformModel, UniformView, UniformProjection,
	UniformMap, UniformHasMap,
	UniformAmbient, UniformLightColor, UniformLightDir,
	UniformRoughness, UniformMetalness,
}

// Program is a linked GL program with its uniform locations resolved.
type Program struct {
	ID       uint32
	uniforms map[string]int32
}

// CompileTicket builds the ticket program from the embedded sources.
func CompileTicket() (*Program, error) {
	id, err := CompileProgram(TicketVertex, TicketFragment)
	if err != nil {
		return nil, err
	}
	p := &Program{ID: id, uniforms: make(map[string]int32, len(Uniforms))}
	for _, name := range Uniforms {
		// Inactive uniforms report -1; GL ignores writes to them.
		p.uniforms[name] = GetUniform(id, name)
	}
	return p, nil
}

// Uniform returns a resolved location, or -1 for an unknown name.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

// Use makes p the current program.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// Delete frees the program.
func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", string(log))
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

// GetUniform returns the location of a uniform, or -1 if it is not active.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
