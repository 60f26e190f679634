// Package amqp provides the RabbitMQ connection used to publish monitoring
// commands when the monitoring backend is "amqp".
//
// The connection is established with exponential backoff and re-established
// in the background if the broker drops it. Messages are published as
// persistent JSON to durable exchanges, which are declared on first use.
//
//	conn := amqp.New(cfg.AMQP)
//	if err := conn.Start(ctx); err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	err := conn.PublishPersistent(ctx, "sensor.monitoring", amqp.ExchangeDirect,
//	    "sensor.monitoring.enable", msg)
package amqp
