/*
Package credentials resolves the account used to authenticate against
Schedules Direct.

Credentials are read through a persistent Store. On a cache miss the
Provider falls back to externally supplied settings (SD_USER and SD_PWD, or
the config file), derives the SHA-1 password digest the service expects and
writes it back so later runs never need the cleartext password again.

	cache, err := credentials.OpenSQLiteCache(ctx, "sdgrab.db")
	if err != nil {
		return err
	}
	defer cache.Close()

	provider := credentials.NewProvider(cache, credentials.Source{
		Username: os.Getenv("SD_USER"),
		Password: os.Getenv("SD_PWD"),
	}, logger)

	creds, err := provider.Load(ctx)

Every failure returned by Provider is a *StoreError. Without credentials no
request can be made, so callers usually treat it as fatal.
*/
package credentials
