package seeds

func SeedAll() error {
	if err := SeedStates(); err != nil {
		return err
	}
	if err := SeedCategories(); err != nil {
		return err
	}
	if err := SeedAdminUser(); err != nil {
		return err
	}
	return nil
}
