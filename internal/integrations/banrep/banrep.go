package banrep

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/gaston-app/budget-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Client fetches the COP/USD representative market rate (TRM) from the
// Superfinanciera SOAP service
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new TRM client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.TRMURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildSOAPRequest creates a SOAP request for the TRM valid today
func (c *Client) buildSOAPRequest() string {
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:act="http://action.trm.services.generic.action.superfinanciera.nexura.sc.com.co/">
			<soapenv:Header/>
			<soapenv:Body>
				<act:queryTCRM>
					<tcrmQueryAssociatedDate>%s</tcrmQueryAssociatedDate>
				</act:queryTCRM>
			</soapenv:Body>
		</soapenv:Envelope>`, date)
}

// sendRequest sends the SOAP request to the rate service
func (c *Client) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "queryTCRM")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("TRM XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts the rate value from the SOAP response
func (c *Client) parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %v", err)
	}

	valueElement := doc.FindElement("//return/value")
	if valueElement == nil {
		return 0, fmt.Errorf("no TRM value found in XML")
	}

	var rate float64
	if _, err := fmt.Sscanf(valueElement.Text(), "%f", &rate); err != nil {
		return 0, fmt.Errorf("failed to parse rate: %v", err)
	}

	return rate, nil
}

// GetRate retrieves the current TRM
func (c *Client) GetRate() (float64, error) {
	soapRequest := c.buildSOAPRequest()
	body, err := c.sendRequest(soapRequest)
	if err != nil {
		return 0, err
	}

	rate, err := c.parseXMLResponse(body)
	if err != nil {
		return 0, err
	}

	c.log.Infof("Retrieved TRM: %.2f COP/USD", rate)
	return rate, nil
}
