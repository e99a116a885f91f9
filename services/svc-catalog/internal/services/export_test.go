package services

func SetPasswordComparer(s *AuthService, compare func(hash, password []byte) error) {
	s.comparePassword = compare
}
