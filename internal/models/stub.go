package models

// ProxyParam is one parameter of a mapped proxy method
type ProxyParam struct {
	Name    string  // mapped name, e.g. "len_"
	Type    string  // spelling in the proxy signature
	Wrapper string  // transport wrapper, empty for indirect passing
	Passing Passing // how the argument crosses the boundary
}

// WrapperVar returns the local variable holding the boxed value
func (p ProxyParam) WrapperVar() string {
	return "v_" + p.Name
}

// CallArg returns the expression handed to Sandbox::Call
func (p ProxyParam) CallArg() string {
	if p.Passing.IsIndirect() {
		return p.Name
	}
	return "&" + p.WrapperVar()
}

// ProxyStub is a fully mapped function, ready to be emitted
type ProxyStub struct {
	Function      *FunctionDescriptor
	Name          string // dispatcher token and method name
	Prototype     string // original declaration, emitted as a comment
	ReturnType    string // e.g. "::absl::StatusOr<int>"
	ReturnWrapper string // transport wrapper of the result, empty for void
	Params        []ProxyParam
}

// ReturnsVoid reports whether the proxied function returns nothing
func (s *ProxyStub) ReturnsVoid() bool {
	return s.ReturnWrapper == ""
}

// HasLocals reports whether the proxy body declares any wrapper variable
func (s *ProxyStub) HasLocals() bool {
	if !s.ReturnsVoid() {
		return true
	}
	for _, p := range s.Params {
		if p.Wrapper != "" {
			return true
		}
	}
	return false
}
