package meta

// ClassVisitor receives the members of a class, one method per kind.
type ClassVisitor interface {
	VisitSimple(p *SimpleProperty)
	VisitArray(p *ArrayProperty)
	VisitEnum(p *EnumProperty)
	VisitUser(p *UserProperty)
	VisitFunctionProperty(p *FunctionProperty)
	VisitFunction(f *Function)
}

// NopVisitor ignores every member. Embed it to implement only the methods you
// need.
type NopVisitor struct{}

func (NopVisitor) VisitSimple(*SimpleProperty)             {}
func (NopVisitor) VisitArray(*ArrayProperty)               {}
func (NopVisitor) VisitEnum(*EnumProperty)                 {}
func (NopVisitor) VisitUser(*UserProperty)                 {}
func (NopVisitor) VisitFunctionProperty(*FunctionProperty) {}
func (NopVisitor) VisitFunction(*Function)                 {}
