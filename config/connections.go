package config

import (
	"fmt"

	"github.com/starpipe/starpipe/rdbms"
)

// GetConnectionDetails fetches generic connection details from the File c
// using the connectionName to do the lookup.
// If the connection is not found then an error is produced.
func (c *File) GetConnectionDetails(connectionName string) (*rdbms.ConnectionDetails, error) {
	genericConn := &rdbms.ConnectionDetails{}
	if err := c.Get(connectionName, genericConn); err != nil {
		return nil, err
	}
	if genericConn.Type == "" { // if the connection was not found...
		return nil, fmt.Errorf("connection %q is not configured in %q", connectionName, c.FullPath)
	}
	if genericConn.LogicalName == "" {
		genericConn.LogicalName = connectionName
	}
	return genericConn, nil
}

// GetConnectionType returns the connection type of the named connection.
// Return an error if the key doesn't exist.
func (c *File) GetConnectionType(connectionName string) (string, error) {
	genericConn, err := c.GetConnectionDetails(connectionName)
	if err != nil {
		return "", err
	}
	return genericConn.Type, nil
}
