package runtime

import "os"

type ServiceOption func(*ServiceCtx)

func WithServiceTermination(ch chan os.Signal) ServiceOption {
	return func(s *ServiceCtx) {
		s.shutdownChannel = ch
	}
}

func WithWaitingForServer() ServiceOption {
	return func(s *ServiceCtx) {
		s.serverReady = make(chan struct{})
	}
}

// WithEnvFiles loads the given env files before reading the environment.
func WithEnvFiles(files ...string) ServiceOption {
	return func(s *ServiceCtx) {
		s.envFiles = files
	}
}

// WithDependencies applies opts after the defaults, so they can replace
// any default dependency.
func WithDependencies(opts ...DependencyOption) ServiceOption {
	return func(s *ServiceCtx) {
		s.extraOptions = append(s.extraOptions, opts...)
	}
}
