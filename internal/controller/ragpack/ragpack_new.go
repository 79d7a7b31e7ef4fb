package ragpack

// ControllerV1 ragpack v1 接口控制器
type ControllerV1 struct{}

func NewV1() *ControllerV1 {
	return &ControllerV1{}
}
